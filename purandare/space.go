package purandare

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"

	"github.com/unixpickle/wordsense"
	"github.com/unixpickle/wordsense/sparse"
)

// SpaceName identifies spaces built by this package.
const SpaceName = "purandare-petersen"

func init() {
	serializer.RegisterTypedDeserializer((&Space{}).SerializerType(), DeserializeSpace)
}

var _ wordsense.Space = (*Space)(nil)

// ErrDuplicateLabel is returned when two senses share a
// label, such as the second sense of "bank" and a term
// spelled "bank-2".
var ErrDuplicateLabel = errors.New("purandare: duplicate sense label")

// A Space maps sense labels to sense vectors.
//
// Vector dimensions are term IDs from Vocabulary.
type Space struct {
	Vocabulary wordsense.Vocabulary
	Labels     []string
	Vectors    []*sparse.Vector

	// Owners[i] is the term that Labels[i] is a sense of.
	Owners []string

	index  map[string]int
	senses map[string][]string
}

// Assemble builds a Space from the senses of each term,
// indexed by term ID.
func Assemble(vocab wordsense.Vocabulary, senses [][]*Sense) (*Space, error) {
	res := &Space{Vocabulary: vocab}
	for id, termSenses := range senses {
		for _, s := range termSenses {
			res.Labels = append(res.Labels, s.Label)
			res.Vectors = append(res.Vectors, s.Vector)
			res.Owners = append(res.Owners, vocab.Term(id))
		}
	}
	if err := res.buildIndex(); err != nil {
		return nil, err
	}
	return res, nil
}

// DeserializeSpace deserializes a Space.
func DeserializeSpace(d []byte) (space *Space, err error) {
	defer essentials.AddCtxTo("deserialize Space", &err)
	var res Space
	var labelData, ownerData serializer.Bytes
	var vectors *sparse.Matrix
	err = serializer.DeserializeAny(d, &res.Vocabulary, &labelData, &ownerData, &vectors)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(labelData, &res.Labels); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(ownerData, &res.Owners); err != nil {
		return nil, err
	}
	if len(res.Labels) != len(vectors.Rows) || len(res.Owners) != len(res.Labels) {
		return nil, fmt.Errorf("%d labels and %d owners for %d vectors", len(res.Labels),
			len(res.Owners), len(vectors.Rows))
	}
	res.Vectors = vectors.Rows
	if err := res.buildIndex(); err != nil {
		return nil, err
	}
	return &res, nil
}

// LoadSpace reads a Space saved with SaveSpace.
func LoadSpace(path string) (space *Space, err error) {
	defer essentials.AddCtxTo("load space", &err)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := serializer.DeserializeAny(data, &space); err != nil {
		return nil, err
	}
	return space, nil
}

// SaveSpace writes a Space to a file.
func SaveSpace(path string, space *Space) (err error) {
	defer essentials.AddCtxTo("save space", &err)
	data, err := serializer.SerializeAny(space)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Name returns SpaceName.
func (s *Space) Name() string {
	return SpaceName
}

// Dim returns the vocabulary size.
func (s *Space) Dim() int {
	return len(s.Vocabulary)
}

// Words returns every sense label.
func (s *Space) Words() []string {
	return append([]string{}, s.Labels...)
}

// Vector returns the vector for a sense label, or nil.
func (s *Space) Vector(word string) *sparse.Vector {
	if idx, ok := s.index[word]; ok {
		return s.Vectors[idx]
	}
	return nil
}

// Senses returns the labels of every sense of a term.
func (s *Space) Senses(term string) []string {
	return append([]string(nil), s.senses[term]...)
}

// A Feature is a weighted dimension of a sense vector.
type Feature struct {
	Term   string
	Weight float32
}

// TopFeatures returns the n heaviest features of a sense,
// heaviest first.
func (s *Space) TopFeatures(label string, n int) []Feature {
	vec := s.Vector(label)
	if vec == nil {
		return nil
	}
	weights := append([]float32{}, vec.Values...)
	terms := make([]string, len(vec.Indices))
	for i, id := range vec.Indices {
		terms[i] = s.Vocabulary.Term(id)
	}
	essentials.VoodooSort(weights, func(i, j int) bool {
		return weights[i] > weights[j]
	}, terms)
	if len(terms) > n {
		terms, weights = terms[:n], weights[:n]
	}
	res := make([]Feature, len(terms))
	for i, term := range terms {
		res[i] = Feature{Term: term, Weight: weights[i]}
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// a Space with the serializer package.
func (s *Space) SerializerType() string {
	return "github.com/unixpickle/wordsense/purandare.Space"
}

// Serialize serializes the Space.
func (s *Space) Serialize() ([]byte, error) {
	labelData, err := json.Marshal(s.Labels)
	if err != nil {
		return nil, err
	}
	ownerData, err := json.Marshal(s.Owners)
	if err != nil {
		return nil, err
	}
	return serializer.SerializeAny(
		s.Vocabulary,
		serializer.Bytes(labelData),
		serializer.Bytes(ownerData),
		&sparse.Matrix{Rows: s.Vectors},
	)
}

func (s *Space) buildIndex() error {
	s.index = make(map[string]int, len(s.Labels))
	s.senses = map[string][]string{}
	for i, label := range s.Labels {
		if _, ok := s.index[label]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
		}
		s.index[label] = i
		s.senses[s.Owners[i]] = append(s.senses[s.Owners[i]], label)
	}
	return nil
}
