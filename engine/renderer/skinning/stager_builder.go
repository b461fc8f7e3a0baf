package skinning

// StagerBuilderOption is a functional option for configuring a Stager via NewStager.
type StagerBuilderOption func(*stager)

// WithCapacity is an option builder that preallocates staging space for a number of palettes.
//
// Parameters:
//   - palettes: the expected number of Stage calls per frame
//   - maxBones: the matrices per palette
//
// Returns:
//   - StagerBuilderOption: a function that applies the capacity option to a stager
func WithCapacity(palettes, maxBones int) StagerBuilderOption {
	return func(s *stager) {
		if palettes < 1 || maxBones < 1 {
			return
		}
		s.writes = make([]BufferWrite, 0, palettes)
		s.staging = make([]byte, 0, palettes*maxBones*MatrixStride)
	}
}
