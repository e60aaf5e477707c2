package models

// TagRef is one row of the reference-data snapshot handed to the tag matcher:
// a tag text and the species that owns it.
type TagRef struct {
	TagText   string
	SpeciesID uint
	Species   Species
}

// Snapshot flattens species into tag references, preserving species and tag order.
func Snapshot(species []Species) []TagRef {
	refs := make([]TagRef, 0, len(species)*2)
	for _, sp := range species {
		for _, tag := range sp.Tags {
			refs = append(refs, TagRef{TagText: tag, SpeciesID: sp.ID, Species: sp})
		}
	}
	return refs
}
