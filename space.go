package wordsense

import "github.com/unixpickle/wordsense/sparse"

// A Space maps words, or labels of word senses, to
// vectors.
type Space interface {
	// Name identifies the algorithm that built the space.
	Name() string

	// Dim returns the dimensionality of the vectors.
	Dim() int

	// Words returns every label in the space.
	Words() []string

	// Vector returns the vector for a label, or nil if the
	// label is absent.
	Vector(word string) *sparse.Vector
}
