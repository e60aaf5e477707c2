package tagmatch

import (
	"testing"

	"github.com/himanishpuri/BatLog/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	soprano = models.Species{ID: 1, Genus: "Pipistrellus", Species: "pygmaeus", CommonNames: []string{"Soprano Pipistrelle"}}
	common  = models.Species{ID: 2, Genus: "Pipistrellus", Species: "pipistrellus", CommonNames: []string{"Common Pipistrelle"}}
	noctule = models.Species{ID: 3, Genus: "Nyctalus", Species: "noctula", CommonNames: []string{"Noctule"}}
	lesser  = models.Species{ID: 4, Genus: "Rhinolophus", Species: "hipposideros", CommonNames: []string{"Lesser Horseshoe"}}
)

func ref(tag string, sp models.Species) models.TagRef {
	return models.TagRef{TagText: tag, SpeciesID: sp.ID, Species: sp}
}

func names(species []models.Species) []string {
	out := make([]string, 0, len(species))
	for _, s := range species {
		out = append(out, s.DisplayName())
	}
	return out
}

func TestFindSpeciesLongestTagWins(t *testing.T) {
	m := New([]models.TagRef{
		ref("Ble", lesser),
		ref("Noble", noctule),
	})

	got := m.FindSpecies("noble bat seen")

	assert.Equal(t, []string{"Noctule"}, names(got))
}

func TestFindSpeciesUpperCaseTagIsCaseSensitive(t *testing.T) {
	m := New([]models.TagRef{ref("P55", soprano)})

	assert.Equal(t, []string{"Soprano Pipistrelle"}, names(m.FindSpecies("saw a P55 bat")))
	assert.Empty(t, m.FindSpecies("saw a p55 bat"))
}

func TestFindSpeciesMixedCaseTagIgnoresCase(t *testing.T) {
	m := New([]models.TagRef{ref("Pip", common)})

	assert.Len(t, m.FindSpecies("Pip call"), 1)
	assert.Len(t, m.FindSpecies("pip call"), 1)
	assert.Len(t, m.FindSpecies("a PIP call"), 1)
}

func TestFindSpeciesMatchAtStart(t *testing.T) {
	m := New([]models.TagRef{ref("P55", soprano)})

	assert.Len(t, m.FindSpecies("P55"), 1)
}

func TestFindSpeciesLegacyPositionCheck(t *testing.T) {
	m := New([]models.TagRef{ref("P55", soprano)}, WithLegacyPositionCheck())

	assert.Empty(t, m.FindSpecies("P55 feeding"))
	assert.Len(t, m.FindSpecies("two P55"), 1)
}

func TestFindSpeciesMultipleSpecies(t *testing.T) {
	m := New([]models.TagRef{
		ref("Soprano Pip", soprano),
		ref("Pip", common),
		ref("Noctule", noctule),
	})

	got := m.FindSpecies("Soprano Pip then pip and a noctule")

	assert.Equal(t, []string{"Soprano Pipistrelle", "Noctule", "Common Pipistrelle"}, names(got))
}

func TestFindSpeciesKeepsDuplicates(t *testing.T) {
	m := New([]models.TagRef{
		ref("Soprano Pip", soprano),
		ref("P55", soprano),
	})

	got := m.FindSpecies("Soprano Pip and P55")

	assert.Equal(t, []string{"Soprano Pipistrelle", "Soprano Pipistrelle"}, names(got))
}

func TestFindSpeciesTagConsumedOnce(t *testing.T) {
	m := New([]models.TagRef{ref("Pip", common)})

	// only the first occurrence of a tag is consumed
	assert.Len(t, m.FindSpecies("pip pip pip"), 1)
}

func TestFindSpeciesDuplicateTagTextKeepsFirstOwner(t *testing.T) {
	m := New([]models.TagRef{
		ref("Pip", common),
		ref("Pip", soprano),
	})

	require.Equal(t, 1, m.Len())
	assert.Equal(t, []string{"Common Pipistrelle"}, names(m.FindSpecies("pip")))
}

func TestFindSpeciesEmptyInputs(t *testing.T) {
	m := New([]models.TagRef{ref("Pip", common)})
	assert.Empty(t, m.FindSpecies(""))
	assert.Empty(t, m.FindSpecies("   \t"))

	empty := New(nil)
	assert.Empty(t, empty.FindSpecies("pip"))

	var nilMatcher *Matcher
	assert.Empty(t, nilMatcher.FindSpecies("pip"))
}

func TestFindSpeciesNormalisesAccents(t *testing.T) {
	// decomposed e + combining acute in the tag, precomposed in the comment
	m := New([]models.TagRef{ref("Se\u0301rotine", noctule)})

	assert.Len(t, m.FindSpecies("une sérotine"), 1)
}

func TestFindTagsOffsets(t *testing.T) {
	m := New([]models.TagRef{ref("Noctule", noctule), ref("Pip", common)})

	got := m.FindTags("x Noctule y pip")

	require.Len(t, got, 2)
	assert.Equal(t, "Noctule", got[0].Tag)
	assert.Equal(t, 2, got[0].Offset)
	assert.Equal(t, "Pip", got[1].Tag)
	assert.Equal(t, 5, got[1].Offset)
}
