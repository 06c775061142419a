package purandare

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unixpickle/wordsense"
	"github.com/unixpickle/wordsense/sparse"
)

func testSense(label string, dim, feature int) *Sense {
	vec := sparse.NewVector(dim)
	vec.Set(feature, 1)
	return &Sense{Label: label, Vector: vec, Size: 1}
}

func TestAssembleLiteralSuffix(t *testing.T) {
	vocab := wordsense.Vocabulary{"bank", "bank-2"}
	space, err := Assemble(vocab, [][]*Sense{
		{testSense("bank", 2, 0)},
		{testSense("bank-2", 2, 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bank"}, space.Senses("bank"))
	assert.Equal(t, []string{"bank-2"}, space.Senses("bank-2"))

	path := filepath.Join(t.TempDir(), "space")
	require.NoError(t, SaveSpace(path, space))
	loaded, err := LoadSpace(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bank"}, loaded.Senses("bank"))
	assert.Equal(t, space.Owners, loaded.Owners)
}

func TestAssembleDuplicateLabel(t *testing.T) {
	vocab := wordsense.Vocabulary{"bank", "bank-2"}
	_, err := Assemble(vocab, [][]*Sense{
		{testSense("bank", 2, 0), testSense(SenseLabel("bank", 1), 2, 1)},
		{testSense("bank-2", 2, 0)},
	})
	assert.ErrorIs(t, err, ErrDuplicateLabel)
}

func TestSpaceSenses(t *testing.T) {
	vocab := wordsense.Vocabulary{"bank", "river"}
	space, err := Assemble(vocab, [][]*Sense{
		{testSense("bank", 2, 1), testSense("bank-2", 2, 0)},
		nil,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bank", "bank-2"}, space.Senses("bank"))
	assert.Empty(t, space.Senses("river"))
	assert.Equal(t, []Feature{{Term: "river", Weight: 1}}, space.TopFeatures("bank", 5))
	assert.Nil(t, space.TopFeatures("volcano", 5))
}
