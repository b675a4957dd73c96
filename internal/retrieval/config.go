package retrieval

// Config holds retrieval and re-ranking settings. The keyword list and
// boost weight are corpus tuning defaults, exposed as configuration rather
// than hard-coded.
type Config struct {
	// DefaultTopK is the result count used when the caller passes topK <= 0.
	DefaultTopK int
	// OverfetchRatio multiplies topK for the raw index query, giving the
	// re-ranker room to promote lower-raw-score but relevant passages.
	OverfetchRatio int
	// BoostKeywords are matched case-insensitively as substrings of a
	// match's text; each hit adds BoostWeight to the adjusted score.
	BoostKeywords []string
	// BoostWeight is the per-keyword score increment.
	BoostWeight float64
}

// DefaultConfig returns the default retrieval configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultTopK:    5,
		OverfetchRatio: 2,
		BoostKeywords:  []string{"section", "ipc", "punishment", "offense", "crime", "law", "act"},
		BoostWeight:    0.1,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.DefaultTopK == 0 {
		c.DefaultTopK = defaults.DefaultTopK
	}
	if c.OverfetchRatio == 0 {
		c.OverfetchRatio = defaults.OverfetchRatio
	}
	if c.BoostKeywords == nil {
		c.BoostKeywords = defaults.BoostKeywords
	}
	if c.BoostWeight == 0 {
		c.BoostWeight = defaults.BoostWeight
	}
}
