package reference

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/himanishpuri/BatLog/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `species:
  - genus: Pipistrellus
    species: pygmaeus
    common_names: [Soprano Pipistrelle, Soprano Pip]
    tags: [Soprano Pip, P55]
  - genus: Nyctalus
    species: noctula
    common_names: [Noctule]
    tags: [Noc]
    notes: early emerger
`

func TestLoad(t *testing.T) {
	species, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, species, 2)

	assert.Equal(t, "Soprano Pipistrelle", species[0].DisplayName())
	assert.Equal(t, []string{"Soprano Pip", "P55"}, species[0].Tags)
	assert.Equal(t, "early emerger", species[1].Notes)
}

func TestLoadEmpty(t *testing.T) {
	species, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, species)
}

func TestLoadReportsLineOfInvalidEntry(t *testing.T) {
	doc := sample + `  - genus: Myotis
    species: daubentonii
    common_names: [Daubenton's]
    tags: []
`
	_, err := Load(strings.NewReader(doc))
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "line 11")
	assert.Contains(t, err.Error(), "Myotis daubentonii")
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(strings.NewReader("species: [unterminated"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	in := []models.Species{{
		Genus: "Plecotus", Species: "auritus",
		CommonNames: []string{"Brown Long-eared"}, Tags: []string{"BLE", "Plecotus"},
	}}

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, in))
	out, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	path := filepath.Join(t.TempDir(), "ref.yaml")
	require.NoError(t, SaveFile(path, in))
	out, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
