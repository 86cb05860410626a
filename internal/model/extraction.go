package model

// ExtractedMovement is one raw line item extracted from an uploaded document.
// It is read-only external input; the extraction service is responsible for
// its contents.
type ExtractedMovement struct {
	TankName    string
	LevelBefore float64
	LevelAfter  float64
	Quantity    float64
	Date        CivilDate // zero when the document carried no date
	RowIndex    int
}

// MatchCandidate is a ranked tank suggestion for an extracted record.
type MatchCandidate struct {
	TankID     string
	TankName   string
	Confidence float64 // 0-100
}

// RecordWithMatches pairs an extracted record with its tank match candidates.
// BestMatch is the highest-confidence candidate, nil when there are none.
// IsExactMatch marks the best match as authoritative.
type RecordWithMatches struct {
	BestMatch    *MatchCandidate
	Extracted    ExtractedMovement
	Type         MovementType
	Candidates   []MatchCandidate
	IsExactMatch bool
}

// ExtractionResult holds everything extracted from a single document.
// Per-document errors are reported alongside successfully parsed records and
// never block the rest of the batch.
type ExtractionResult struct {
	Filename         string
	Records          []RecordWithMatches
	ExtractionErrors []string
}

// ImportItem is one confirmed movement ready to be written to the store.
type ImportItem struct {
	TankID string
	Type   MovementType
	Notes  string
	Date   CivilDate
	Volume float64
}

// ImportResult reports the per-item outcome of a confirmed import.
type ImportResult struct {
	CreatedCount int
	FailedCount  int
	Errors       []string
}
