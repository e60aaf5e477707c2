package batlog

// ImportStats counts what a reference import changed.
type ImportStats struct {
	Added   int // species not previously stored
	Updated int // species matched by genus and epithet and overwritten
}
