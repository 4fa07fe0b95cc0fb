package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	DataDir   string
	Verbose   bool
	MaxCycles int
	Timeout   time.Duration

	// Agent model flags
	AgentProvider string
	AgentModel    string

	// Translation model flags
	TranslationProvider string
	TranslationModel    string

	// Deck store flags
	StoreURL   string
	PackageOut string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		DataDir:             "data",
		MaxCycles:           8,
		Timeout:             60 * time.Second,
		AgentProvider:       "openai",
		AgentModel:          "gpt-4o-mini",
		TranslationProvider: "openai",
		TranslationModel:    "gpt-4o-mini",
		StoreURL:            "http://localhost:8765",
	}
}
