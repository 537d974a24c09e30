package safety

import (
	"sort"
	"strings"
)

// ContextAnalyzer maps a working directory onto a sensitivity delta that
// the risk assessor adds to the base tier. Scratch areas subtract
// nothing, system configuration areas escalate sharply.
type ContextAnalyzer struct {
	// prefixes sorted longest first so the most specific entry wins.
	prefixes []dirSensitivity
}

type dirSensitivity struct {
	prefix string
	delta  int
}

// NewContextAnalyzer builds the analyzer with the builtin sensitivity
// table.
func NewContextAnalyzer() *ContextAnalyzer {
	table := []dirSensitivity{
		{"/tmp", 0},
		{"/var/tmp", 0},
		{"/home", 0},
		{"/Users", 0},
		{"/var/log", 1},
		{"/var", 1},
		{"/usr", 2},
		{"/bin", 2},
		{"/sbin", 2},
		{"/proc", 2},
		{"/etc", 3},
		{"/boot", 3},
		{"/sys", 3},
		{"/", 2},
	}
	sort.Slice(table, func(i, j int) bool {
		return len(table[i].prefix) > len(table[j].prefix)
	})
	return &ContextAnalyzer{prefixes: table}
}

// SensitivityDelta returns how many risk tiers working in dir adds.
// Relative or empty paths carry no delta: without an absolute location
// there is nothing to escalate on.
func (a *ContextAnalyzer) SensitivityDelta(dir string) int {
	dir = strings.TrimSpace(dir)
	if dir == "" || !strings.HasPrefix(dir, "/") {
		return 0
	}
	for _, entry := range a.prefixes {
		if entry.prefix == "/" {
			// Fallback for any other absolute path.
			return entry.delta
		}
		if dir == entry.prefix || strings.HasPrefix(dir, entry.prefix+"/") {
			return entry.delta
		}
	}
	return 0
}

// Describe names the sensitivity bucket for explanations.
func (a *ContextAnalyzer) Describe(dir string) string {
	switch a.SensitivityDelta(dir) {
	case 0:
		return "low-sensitivity directory"
	case 1:
		return "log or state directory"
	case 2:
		return "system directory"
	default:
		return "critical system directory"
	}
}
