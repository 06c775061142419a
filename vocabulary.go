package wordsense

import (
	"encoding/json"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	serializer.RegisterTypedDeserializer(Vocabulary{}.SerializerType(), DeserializeVocabulary)
}

// A Vocabulary is a frozen list of terms in which each
// term's index is its ID.
type Vocabulary []string

// DeserializeVocabulary deserializes a Vocabulary.
func DeserializeVocabulary(d []byte) (Vocabulary, error) {
	var res Vocabulary
	if err := json.Unmarshal(d, &res); err != nil {
		return nil, essentials.AddCtx("deserialize Vocabulary", err)
	}
	return res, nil
}

// Term gets the term for the given ID.
//
// If the ID is out of range, "" is returned.
func (v Vocabulary) Term(id int) string {
	if id < 0 || id >= len(v) {
		return ""
	}
	return v[id]
}

// SerializerType returns the unique ID used to serialize
// a Vocabulary with the serializer package.
func (v Vocabulary) SerializerType() string {
	return "github.com/unixpickle/wordsense.Vocabulary"
}

// Serialize serializes the Vocabulary.
func (v Vocabulary) Serialize() ([]byte, error) {
	return json.Marshal(v)
}
