package domain

// Config mirrors ~/.cmdwise/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Models              []ModelDefinition `yaml:"models"`
	Context             ContextSettings   `yaml:"context"`
	Security            SecuritySettings  `yaml:"security"`
	Execution           ExecutionSettings `yaml:"execution"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultModel    string `yaml:"default_model"`
	AutoExecuteSafe bool   `yaml:"auto_execute_safe"`
	TimeoutSeconds  int    `yaml:"timeout"`
}

// ContextSettings configures environmental context collection.
type ContextSettings struct {
	IncludeGit bool `yaml:"include_git"`
	IncludeEnv bool `yaml:"include_env"`
	// HistoryWindow is how many recent commands feed the behavioral
	// analyzer when validating a generated command.
	HistoryWindow int `yaml:"history_window"`
}

// SecuritySettings configures the safety validation engine.
type SecuritySettings struct {
	Enabled bool `yaml:"enabled"`
	// PatternsFile optionally points at a YAML file with extra regex
	// patterns loaded on top of the built-in set.
	PatternsFile string `yaml:"patterns_file"`
}

// ExecutionSettings controls how commands run.
type ExecutionSettings struct {
	Shell                string `yaml:"shell"`
	ConfirmBeforeExecute bool   `yaml:"confirm_before_execute"`
}
