package model

// ParsedSignal is a single refinery signal parsed from an uploaded workbook.
type ParsedSignal struct {
	SignalID     string
	RefineryTank string
	LoadDate     CivilDate
	Volume       float64
}

// SignalUploadResult reports the outcome of a signal workbook upload.
// Row-level parse errors are collected, not fatal.
type SignalUploadResult struct {
	Signals      []ParsedSignal
	Errors       []string
	CreatedCount int
	SkippedCount int
}

// SignalAssignment holds the user-provided values for assigning an
// unassigned signal to a tank.
type SignalAssignment struct {
	TankID         string
	Notes          string
	ScheduledDate  CivilDate
	ExpectedVolume float64
}

// TradeInfo carries the trade linkage for a signal movement.
type TradeInfo struct {
	TradeNumber   string
	TradeLineItem string
}
