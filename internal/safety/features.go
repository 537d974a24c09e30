// Package safety implements the layered command validation pipeline:
// feature extraction, pattern matching, directory sensitivity analysis,
// behavioral sequence analysis and weighted risk assessment. The package
// exposes a single Validator facade consumed through ports.SafetyValidator.
package safety

import (
	"strings"
)

// PrivilegeLevel describes the effective privilege a command runs with.
type PrivilegeLevel int

const (
	PrivilegeUser PrivilegeLevel = iota
	PrivilegeElevated
	PrivilegeRoot
)

func (p PrivilegeLevel) String() string {
	switch p {
	case PrivilegeElevated:
		return "elevated"
	case PrivilegeRoot:
		return "root"
	}
	return "user"
}

// TargetScope describes the blast radius of whatever the command touches.
type TargetScope int

const (
	ScopeSingleFile TargetScope = iota
	ScopeLocalFiles
	ScopeRecursive
	ScopeNetwork
	ScopeSystem
	ScopeRoot
)

func (s TargetScope) String() string {
	switch s {
	case ScopeLocalFiles:
		return "local_files"
	case ScopeRecursive:
		return "recursive"
	case ScopeNetwork:
		return "network"
	case ScopeSystem:
		return "system"
	case ScopeRoot:
		return "root"
	}
	return "single_file"
}

// CommandFeatures is the structured view of a raw command string that the
// downstream analyzers consume. Extraction is total: any input string,
// including an empty one, produces a valid feature set.
type CommandFeatures struct {
	Raw    string
	Tokens []string
	Flags  map[string]bool

	HasPipe       bool
	HasRedirect   bool
	HasBackground bool
	HasLogicOps   bool

	DestructiveScore float64
	Privilege        PrivilegeLevel
	Scope            TargetScope

	SystemCommand  bool
	NetworkCommand bool
	DiskCommand    bool

	RecursiveFlag bool
	ForceFlag     bool
	Wildcard      bool
	RootPath      bool
	SystemPath    bool
	PipeToShell   bool
}

// BaseCommand returns the leading token with any privilege wrapper
// (sudo, doas, su) stripped, which is what the destructive vocabulary
// keys on.
func (f CommandFeatures) BaseCommand() string {
	for _, tok := range f.Tokens {
		switch tok {
		case "sudo", "doas", "su":
			continue
		}
		if strings.HasPrefix(tok, "-") {
			continue
		}
		return tok
	}
	return ""
}

var destructiveBase = map[string]float64{
	"rm":       0.7,
	"dd":       0.9,
	"mkfs":     1.0,
	"format":   1.0,
	"fdisk":    0.8,
	"shred":    0.8,
	"truncate": 0.5,
	"del":      0.6,
	"erase":    0.6,
}

var systemCommands = map[string]bool{
	"systemctl": true,
	"service":   true,
	"reboot":    true,
	"shutdown":  true,
	"halt":      true,
	"init":      true,
	"mount":     true,
	"umount":    true,
	"modprobe":  true,
	"sysctl":    true,
	"useradd":   true,
	"userdel":   true,
	"passwd":    true,
	"crontab":   true,
}

var networkCommands = map[string]bool{
	"curl":    true,
	"wget":    true,
	"nc":      true,
	"ncat":    true,
	"netcat":  true,
	"ssh":     true,
	"scp":     true,
	"rsync":   true,
	"ftp":     true,
	"telnet":  true,
	"nmap":    true,
	"netstat": true,
	"ss":      true,
}

var diskCommands = map[string]bool{
	"dd":        true,
	"mkfs":      true,
	"fdisk":     true,
	"parted":    true,
	"mkswap":    true,
	"swapon":    true,
	"swapoff":   true,
	"badblocks": true,
}

var systemPathPrefixes = []string{"/usr", "/bin", "/sbin", "/etc", "/sys", "/boot", "/lib", "/var"}

// ExtractFeatures tokenizes the command and derives the lexical, semantic
// and pattern level features used by pattern matching and risk scoring.
func ExtractFeatures(command string) CommandFeatures {
	f := CommandFeatures{
		Raw:   command,
		Flags: map[string]bool{},
	}
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return f
	}
	f.Tokens = strings.Fields(trimmed)

	f.HasPipe = containsUnquoted(trimmed, "|")
	f.HasRedirect = containsUnquoted(trimmed, ">") || containsUnquoted(trimmed, "<")
	f.HasBackground = containsUnquoted(trimmed, "&")
	f.HasLogicOps = containsUnquoted(trimmed, "&&") || containsUnquoted(trimmed, "||") || containsUnquoted(trimmed, ";")

	for _, tok := range f.Tokens {
		if strings.HasPrefix(tok, "--") {
			f.Flags[tok] = true
			continue
		}
		if strings.HasPrefix(tok, "-") && len(tok) > 1 {
			f.Flags[tok] = true
			// Expand combined short flags so -rf also registers -r and -f.
			if len(tok) > 2 {
				for _, c := range tok[1:] {
					f.Flags["-"+string(c)] = true
				}
			}
		}
	}
	f.RecursiveFlag = f.Flags["-r"] || f.Flags["-R"] || f.Flags["--recursive"]
	f.ForceFlag = f.Flags["-f"] || f.Flags["--force"]

	f.Privilege = detectPrivilege(f.Tokens)

	base := f.BaseCommand()
	f.SystemCommand = systemCommands[base]
	f.NetworkCommand = networkCommands[base]
	f.DiskCommand = diskCommands[base] || strings.HasPrefix(base, "mkfs.")

	lower := strings.ToLower(trimmed)
	for _, tok := range f.Tokens {
		if strings.ContainsAny(tok, "*?") {
			f.Wildcard = true
		}
		if tok == "/" {
			f.RootPath = true
		}
		if strings.HasPrefix(tok, "/") {
			for _, prefix := range systemPathPrefixes {
				if tok == prefix || strings.HasPrefix(tok, prefix+"/") {
					f.SystemPath = true
				}
			}
		}
	}
	f.PipeToShell = f.HasPipe && f.NetworkCommand &&
		(strings.Contains(lower, "| sh") || strings.Contains(lower, "| bash") ||
			strings.Contains(lower, "|sh") || strings.Contains(lower, "|bash") ||
			strings.Contains(lower, "| zsh") || strings.Contains(lower, "| fish"))

	f.Scope = detectScope(f)
	f.DestructiveScore = destructiveScore(f, lower)
	return f
}

func detectPrivilege(tokens []string) PrivilegeLevel {
	if len(tokens) == 0 {
		return PrivilegeUser
	}
	switch tokens[0] {
	case "su":
		return PrivilegeRoot
	case "sudo", "doas":
		if len(tokens) > 1 && tokens[1] == "su" {
			return PrivilegeRoot
		}
		return PrivilegeElevated
	}
	return PrivilegeUser
}

func detectScope(f CommandFeatures) TargetScope {
	// Bare "/" as an argument targets the filesystem root regardless of
	// anything else in the command line.
	if f.RootPath {
		return ScopeRoot
	}
	for _, tok := range f.Tokens {
		if strings.HasPrefix(tok, "/") && !strings.HasPrefix(tok, "/home/") && tok != "/home" {
			for _, prefix := range systemPathPrefixes {
				if tok == prefix || strings.HasPrefix(tok, prefix+"/") {
					return ScopeSystem
				}
			}
		}
	}
	for _, tok := range f.Tokens {
		if strings.Contains(tok, "://") {
			return ScopeNetwork
		}
	}
	if f.NetworkCommand {
		return ScopeNetwork
	}
	if f.RecursiveFlag {
		return ScopeRecursive
	}
	if f.Wildcard {
		return ScopeLocalFiles
	}
	return ScopeSingleFile
}

func destructiveScore(f CommandFeatures, lower string) float64 {
	base := f.BaseCommand()
	score := destructiveBase[base]
	// mkfs is usually invoked through its per-filesystem wrappers.
	if score == 0 && strings.HasPrefix(base, "mkfs.") {
		score = destructiveBase["mkfs"]
	}
	switch base {
	case "chmod", "chown", "chgrp":
		score += 0.3
	}
	if f.ForceFlag {
		score += 0.2
	}
	if f.RecursiveFlag {
		score += 0.2
	}
	if strings.Contains(lower, "drop") && strings.Contains(lower, "database") {
		score += 0.9
	}
	if strings.Contains(lower, "truncate") && strings.Contains(lower, "table") {
		score += 0.7
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// containsUnquoted reports whether op occurs outside single or double
// quotes. Quote tracking is a parity heuristic, good enough for shell
// one-liners.
func containsUnquoted(s, op string) bool {
	inSingle, inDouble := false, false
	for i := 0; i+len(op) <= len(s); i++ {
		switch s[i] {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		}
		if !inSingle && !inDouble && s[i:i+len(op)] == op {
			// Reject "|" when it is actually part of "||".
			if op == "|" {
				if i+1 < len(s) && s[i+1] == '|' {
					i++
					continue
				}
				if i > 0 && s[i-1] == '|' {
					continue
				}
			}
			// Reject "&" when it is part of "&&" or a redirect like
			// "2>&1" or "&>".
			if op == "&" {
				if i+1 < len(s) && (s[i+1] == '&' || s[i+1] == '>') {
					i++
					continue
				}
				if i > 0 && (s[i-1] == '&' || s[i-1] == '>' || s[i-1] == '<') {
					continue
				}
			}
			return true
		}
	}
	return false
}

// Vector renders the features as a fixed 30 element numeric vector:
// 5 lexical, 8 semantic, 7 pattern, 10 reserved for future signals.
func (f CommandFeatures) Vector() []float64 {
	v := make([]float64, 30)
	v[0] = clamp01(float64(len(f.Tokens)) / 10)
	v[1] = clamp01(float64(len(f.Raw)) / 100)
	v[2] = clamp01(float64(len(f.Flags)) / 5)
	v[3] = boolToFloat(f.HasPipe)
	v[4] = boolToFloat(f.HasLogicOps)

	v[5] = f.DestructiveScore
	v[6] = float64(f.Privilege) / 2
	v[7] = float64(f.Scope) / 5
	v[8] = boolToFloat(f.SystemCommand)
	v[9] = boolToFloat(f.NetworkCommand)
	v[10] = boolToFloat(f.DiskCommand)
	v[11] = boolToFloat(f.HasRedirect)
	v[12] = boolToFloat(f.HasBackground)

	v[13] = boolToFloat(f.RecursiveFlag)
	v[14] = boolToFloat(f.ForceFlag)
	v[15] = boolToFloat(f.Wildcard)
	v[16] = boolToFloat(f.RootPath)
	v[17] = boolToFloat(f.SystemPath)
	v[18] = boolToFloat(f.PipeToShell)
	v[19] = boolToFloat(f.HasBackground && f.NetworkCommand)
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
