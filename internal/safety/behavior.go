package safety

import "strings"

// BehavioralAnalyzer looks at the recent command window plus the current
// command and flags suspicious sequences. A single reconnaissance
// command is normal administration; several distinct categories in a
// short window look like systematic information gathering.
type BehavioralAnalyzer struct {
	threshold int
}

// NewBehavioralAnalyzer builds an analyzer with the default category
// threshold of three.
func NewBehavioralAnalyzer() *BehavioralAnalyzer {
	return &BehavioralAnalyzer{threshold: 3}
}

const FlagInformationGathering = "information_gathering"

var reconCategories = []struct {
	name     string
	keywords []string
}{
	{"process_inspection", []string{"ps ", "ps aux", "top", "htop", "lsof", "pgrep"}},
	{"network_inspection", []string{"netstat", "ss ", "ifconfig", "ip addr", "nmap", "lsof -i", "arp "}},
	{"credential_access", []string{"/etc/passwd", "/etc/shadow", ".ssh", "password", "credential", "secret"}},
	{"key_material_search", []string{".key", ".pem", "id_rsa", "id_ed25519", "authorized_keys", "known_hosts"}},
	{"system_enumeration", []string{"whoami", "uname", "hostname", "id;", "id &&", "groups", "last ", "w "}},
}

// Flags evaluates the command in the context of the recent window and
// returns any behavioral flags raised. The window and the current
// command count together: reconnaissance spread across the session is
// the signal, not any one command.
func (b *BehavioralAnalyzer) Flags(command string, recent []string) []string {
	seen := map[string]bool{}
	mark := func(cmd string) {
		lower := strings.ToLower(cmd)
		for _, cat := range reconCategories {
			if seen[cat.name] {
				continue
			}
			for _, kw := range cat.keywords {
				if matchKeyword(lower, kw) {
					seen[cat.name] = true
					break
				}
			}
		}
	}
	for _, cmd := range recent {
		mark(cmd)
	}
	mark(command)

	if len(seen) >= b.threshold {
		return []string{FlagInformationGathering}
	}
	return nil
}

// matchKeyword looks for kw starting and ending on token boundaries,
// so "top" matches "top -b" but not "systemctl stop". Keywords ending
// in a boundary byte (a space, a semicolon) carry their own closing
// boundary; a trailing-space keyword still matches the bare command
// ("ps " matches both "ps" and "ps aux").
func matchKeyword(lower, kw string) bool {
	if strings.HasSuffix(kw, " ") && lower == strings.TrimSuffix(kw, " ") {
		return true
	}
	for i := 0; i+len(kw) <= len(lower); i++ {
		if lower[i:i+len(kw)] != kw {
			continue
		}
		if i > 0 && !boundaryByte(lower[i-1]) {
			continue
		}
		if end := i + len(kw); end < len(lower) && !boundaryByte(lower[end]) && !boundaryByte(kw[len(kw)-1]) {
			continue
		}
		return true
	}
	return false
}

func boundaryByte(c byte) bool {
	switch c {
	case ' ', '\t', '|', ';', '&', '/', '<', '>', '(', ')', '\'', '"', '`', '=', '*':
		return true
	}
	return false
}
