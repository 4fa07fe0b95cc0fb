package cli

import (
	"testing"
	"time"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"DataDir", flags.DataDir, "data"},
		{"MaxCycles", flags.MaxCycles, 8},
		{"Timeout", flags.Timeout, 60 * time.Second},
		{"AgentProvider", flags.AgentProvider, "openai"},
		{"AgentModel", flags.AgentModel, "gpt-4o-mini"},
		{"TranslationProvider", flags.TranslationProvider, "openai"},
		{"TranslationModel", flags.TranslationModel, "gpt-4o-mini"},
		{"StoreURL", flags.StoreURL, "http://localhost:8765"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test defaults that should be zero values
	if flags.CfgFile != "" {
		t.Errorf("CfgFile = %q, want empty string", flags.CfgFile)
	}
	if flags.PackageOut != "" {
		t.Errorf("PackageOut = %q, want empty string", flags.PackageOut)
	}
	if flags.Verbose {
		t.Error("Verbose = true, want false")
	}
}
