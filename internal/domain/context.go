package domain

// ContextSnapshot holds environment data injected into prompts and into
// the safety validation call.
type ContextSnapshot struct {
	WorkingDir      string
	Shell           string
	OS              string
	User            string
	AvailableTools  []string
	Git             *GitStatus
	EnvironmentVars map[string]string
	// RecentCommands is the history window handed to the behavioral
	// analyzer, most recent last.
	RecentCommands []string
}

// GitStatus captures contextual Git data.
type GitStatus struct {
	Branch        string
	ModifiedCount int
	Summary       string
}
