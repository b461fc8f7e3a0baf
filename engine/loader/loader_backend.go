package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-skin/engine/model"
)

// loaderBackend defines the generic interface for importing rigs from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports the hierarchy, bones and clips of the file at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.ImportedModel: the imported rig
	//   - error: error if loading fails
	Load(path string) (*model.ImportedModel, error)

	// LoadReader imports a rig from a self-contained stream.
	//
	// Parameters:
	//   - name: the model name to use
	//   - r: the reader providing model data
	//
	// Returns:
	//   - *model.ImportedModel: the imported rig
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (*model.ImportedModel, error)
}
