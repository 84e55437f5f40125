package config

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		BlockSize: 1024,

		MinFileSize:     "", // no minimum: even 1-byte duplicates count
		ExcludePatterns: []string{},

		Strategy:   "nop", // inspect-only unless the user opts in
		CopyPrefix: "Copy of ",

		DryRun:       true, // never delete without an explicit opt-out
		Verify:       false,
		ShowProgress: false,
		Workers:      0,

		MinRootDepth: 3,

		Verbose:   false,
		LogFormat: "text",
	}
}
