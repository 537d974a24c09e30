package safety

import "strings"

// alternativeGenerators proposes safer substitutes keyed by the pattern
// that fired. Every candidate is re-assessed before it is surfaced so a
// suggestion can never be riskier than the original command.
var alternativeGenerators = map[string]func(command string, f CommandFeatures) []string{
	"rm_rf_star": func(string, CommandFeatures) []string {
		return []string{"rm -i *", "mv * ~/.trash/"}
	},
	"rm_rf_dot": func(string, CommandFeatures) []string {
		return []string{"rm -ri .", "ls -la"}
	},
	"chmod_777": func(_ string, f CommandFeatures) []string {
		target := lastPathArg(f)
		if target == "" {
			return nil
		}
		return []string{"chmod 644 " + target, "chmod 755 " + target}
	},
	"sudo_su": func(string, CommandFeatures) []string {
		return []string{"sudo -i", "sudo -s"}
	},
	"sudo_bash": func(string, CommandFeatures) []string {
		return []string{"sudo -i"}
	},
	"curl_pipe_shell": func(command string, _ CommandFeatures) []string {
		url := firstURL(command)
		if url == "" {
			return nil
		}
		return []string{
			"curl -fsSL -o install.sh " + url,
			"less install.sh",
		}
	},
	"find_exec_rm": func(command string, _ CommandFeatures) []string {
		if idx := strings.Index(command, "-exec"); idx > 0 {
			return []string{strings.TrimSpace(command[:idx]) + " -print"}
		}
		return nil
	},
	"drop_database": func(string, CommandFeatures) []string {
		return []string{"pg_dump <database> > backup.sql"}
	},
	"kill_all_processes": func(string, CommandFeatures) []string {
		return []string{"pkill <process-name>", "kill <pid>"}
	},
}

func lastPathArg(f CommandFeatures) string {
	for i := len(f.Tokens) - 1; i >= 0; i-- {
		tok := f.Tokens[i]
		if strings.HasPrefix(tok, "-") {
			continue
		}
		if _, numeric := parseMode(tok); numeric {
			continue
		}
		if tok == "chmod" || tok == "sudo" {
			continue
		}
		return tok
	}
	return ""
}

func parseMode(tok string) (string, bool) {
	if len(tok) < 3 || len(tok) > 4 {
		return "", false
	}
	for _, c := range tok {
		if c < '0' || c > '7' {
			return "", false
		}
	}
	return tok, true
}

func firstURL(command string) string {
	for _, tok := range strings.Fields(command) {
		if strings.Contains(tok, "://") {
			return strings.Trim(tok, `"'`)
		}
	}
	return ""
}
