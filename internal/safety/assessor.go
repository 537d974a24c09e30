package safety

import (
	"fmt"
	"strings"

	"github.com/doeshing/cmdwise/internal/domain"
)

// RiskAssessor combines feature heuristics, pattern matches, directory
// sensitivity and behavioral flags into a final verdict.
type RiskAssessor struct {
	patterns *PatternEngine
	context  *ContextAnalyzer
}

// NewRiskAssessor wires the assessor to the shared pattern engine and
// context analyzer.
func NewRiskAssessor(patterns *PatternEngine, context *ContextAnalyzer) *RiskAssessor {
	return &RiskAssessor{patterns: patterns, context: context}
}

const (
	weightDestructive = 0.5
	weightScope       = 0.3
	weightPrivilege   = 0.2

	thresholdModerate = 0.25
	thresholdHigh     = 0.5
	thresholdCritical = 0.75
)

var scopeWeights = map[TargetScope]float64{
	ScopeSingleFile: 0.0,
	ScopeLocalFiles: 0.2,
	ScopeRecursive:  0.5,
	ScopeNetwork:    0.6,
	ScopeSystem:     0.8,
	ScopeRoot:       1.0,
}

var privilegeWeights = map[PrivilegeLevel]float64{
	PrivilegeUser:     0.0,
	PrivilegeElevated: 0.5,
	PrivilegeRoot:     1.0,
}

// knownVocabulary covers the commands the heuristic model was tuned on.
// A command outside this set with no other signals keeps confidence low.
var knownVocabulary = map[string]bool{
	"ls": true, "cd": true, "pwd": true, "cat": true, "echo": true,
	"cp": true, "mv": true, "rm": true, "mkdir": true, "rmdir": true,
	"touch": true, "grep": true, "find": true, "sed": true, "awk": true,
	"head": true, "tail": true, "less": true, "more": true, "wc": true,
	"sort": true, "uniq": true, "cut": true, "tr": true, "xargs": true,
	"tar": true, "gzip": true, "gunzip": true, "zip": true, "unzip": true,
	"git": true, "make": true, "go": true, "cargo": true, "npm": true,
	"python": true, "python3": true, "node": true, "docker": true,
	"kubectl": true, "ssh": true, "scp": true, "rsync": true, "curl": true,
	"wget": true, "ping": true, "dig": true, "nslookup": true,
	"ps": true, "top": true, "htop": true, "kill": true, "pkill": true,
	"killall": true, "df": true, "du": true, "free": true, "uname": true,
	"whoami": true, "hostname": true, "date": true, "env": true,
	"export": true, "which": true, "type": true, "chmod": true,
	"chown": true, "chgrp": true, "ln": true, "dd": true, "mkfs": true,
	"fdisk": true, "mount": true, "umount": true, "systemctl": true,
	"service": true, "sudo": true, "su": true, "doas": true,
	"apt": true, "apt-get": true, "yum": true, "dnf": true, "brew": true,
	"pip": true, "pip3": true, "vi": true, "vim": true, "nano": true,
	"history": true, "stat": true, "file": true, "id": true,
	"netstat": true, "ss": true, "lsof": true, "nmap": true,
	"shred": true, "truncate": true, "reboot": true, "shutdown": true,
}

// assessment carries everything downstream consumers need to render a
// ValidationResult.
type assessment struct {
	level      domain.RiskLevel
	score      float64
	matches    []PatternMatch
	flags      []string
	dirDelta   int
	dirDesc    string
	features   CommandFeatures
	unknownCmd bool
}

// assess runs the escalation pipeline: heuristic score, directory
// sensitivity, pattern escalation, behavioral escalation. Risk only
// ever goes up from the heuristic base.
func (a *RiskAssessor) assess(command, workingDir string, flags []string) assessment {
	features := ExtractFeatures(command)

	score := weightDestructive*features.DestructiveScore +
		weightScope*scopeWeights[features.Scope] +
		weightPrivilege*privilegeWeights[features.Privilege]

	level := domain.RiskSafe
	switch {
	case score >= thresholdCritical:
		level = domain.RiskCritical
	case score >= thresholdHigh:
		level = domain.RiskHigh
	case score >= thresholdModerate:
		level = domain.RiskModerate
	}

	delta := a.context.SensitivityDelta(workingDir)
	if delta > 0 && level > domain.RiskSafe {
		level = capRisk(level + domain.RiskLevel(delta))
	}

	matches := a.patterns.MatchAll(command)
	for _, m := range matches {
		if m.Category == CategorySafeReadonly {
			continue
		}
		level = domain.MaxRisk(level, m.Risk)
	}

	if len(flags) > 0 {
		level = capRisk(level + 1)
	}

	base := features.BaseCommand()
	unknown := base != "" && !knownVocabulary[base] &&
		len(features.Flags) == 0 && features.Scope == ScopeSingleFile

	return assessment{
		level:      level,
		score:      score,
		matches:    matches,
		flags:      flags,
		dirDelta:   delta,
		dirDesc:    a.context.Describe(workingDir),
		features:   features,
		unknownCmd: unknown,
	}
}

func capRisk(level domain.RiskLevel) domain.RiskLevel {
	if level > domain.RiskCritical {
		return domain.RiskCritical
	}
	return level
}

// confidence derives how certain the verdict is. Pattern matches give
// high confidence (literal rules above regex rules); heuristic-only
// verdicts score by distance from the nearest tier threshold; commands
// outside the known vocabulary with no other signal stay capped.
func (as assessment) confidence() float64 {
	best := 0.0
	for _, m := range as.matches {
		if m.Literal {
			if best < 0.95 {
				best = 0.95
			}
		} else if best < 0.85 {
			best = 0.85
		}
	}
	if best > 0 {
		return best
	}
	if as.unknownCmd {
		return 0.6
	}
	return 0.6 + 0.3*nearestThresholdDistance(as.score)
}

func nearestThresholdDistance(score float64) float64 {
	min := 1.0
	for _, t := range []float64{thresholdModerate, thresholdHigh, thresholdCritical} {
		d := score - t
		if d < 0 {
			d = -d
		}
		if d < min {
			min = d
		}
	}
	return min
}

// dangerousCategories returns the matched non-safe categories, deduped
// in match order.
func (as assessment) dangerousCategories() []string {
	var cats []string
	seen := map[string]bool{}
	for _, m := range as.matches {
		if m.Category == CategorySafeReadonly || seen[m.Category] {
			continue
		}
		seen[m.Category] = true
		cats = append(cats, m.Category)
	}
	return cats
}

var confirmationMessages = map[string]string{
	CategoryFilesystemDestruction: "Confirm irreversible deletion of files or directories",
	CategorySystemModification:    "Confirm modification of system configuration or permissions",
	CategoryPrivilegeEscalation:   "Confirm running with elevated or root privileges",
	CategoryDiskFormatting:        "Confirm writing directly to a disk device, destroying its contents",
	CategoryRemoteExecution:       "Confirm executing code downloaded from a remote source",
	CategoryNetworkBackdoor:       "Confirm opening a network channel that exposes this machine",
	CategoryProcessManipulation:   "Confirm terminating processes beyond a single target",
	CategoryPersistence:           "Confirm installing code that runs automatically in the future",
	CategoryForkBomb:              "Confirm running a command designed to exhaust system resources",
	CategoryDatabaseDestruction:   "Confirm destructive database operation that removes data",
	CategoryCustom:                "Confirm command matching an operator-defined dangerous pattern",
}

// confirmations lists the acknowledgements the user must give before a
// high or critical command may proceed.
func (as assessment) confirmations() []string {
	if as.level < domain.RiskHigh {
		return nil
	}
	var msgs []string
	seen := map[string]bool{}
	for _, m := range as.matches {
		if m.Risk < domain.RiskHigh || seen[m.Category] {
			continue
		}
		if msg, ok := confirmationMessages[m.Category]; ok {
			seen[m.Category] = true
			msgs = append(msgs, msg)
		}
	}
	if len(msgs) == 0 {
		msgs = append(msgs, "Confirm execution of a high-risk command")
	}
	return msgs
}

// explanation renders a deterministic human-readable rationale naming
// the dominant signal behind the verdict.
func (as assessment) explanation(command string) string {
	if strings.TrimSpace(command) == "" {
		return "Empty command carries no risk but also no intent to evaluate"
	}
	if cats := as.dangerousCategories(); len(cats) > 0 {
		return fmt.Sprintf("Command matches %s pattern, assessed as %s risk", cats[0], as.level)
	}
	if len(as.flags) > 0 {
		return fmt.Sprintf("Recent command sequence raised %s, escalating to %s risk", as.flags[0], as.level)
	}
	if as.dirDelta > 0 && as.level > domain.RiskSafe {
		return fmt.Sprintf("Operating in a %s raises the command to %s risk", as.dirDesc, as.level)
	}
	if as.level == domain.RiskSafe {
		return "No dangerous patterns or risk signals detected"
	}
	return fmt.Sprintf("Heuristic risk score %.2f places the command at %s risk", as.score, as.level)
}
