package types

// DataRequirement names a kind of data series a strategy consumes. Every
// requirement must have an explicit masking rule in the engine; unknown
// requirements are rejected rather than passed through.
type DataRequirement string

const (
	DataRequirementBars    DataRequirement = "BARS"
	DataRequirementOptions DataRequirement = "OPTIONS"
)
