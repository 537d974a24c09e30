package safety

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/doeshing/cmdwise/internal/domain"
)

// Pattern categories used by the builtin library. Safe categories match
// for confidence purposes but never escalate risk.
const (
	CategoryFilesystemDestruction = "filesystem_destruction"
	CategorySystemModification    = "system_modification"
	CategoryPrivilegeEscalation   = "privilege_escalation"
	CategoryDiskFormatting        = "disk_formatting"
	CategoryRemoteExecution       = "remote_execution"
	CategoryNetworkBackdoor       = "network_backdoor"
	CategoryProcessManipulation   = "process_manipulation"
	CategoryPersistence           = "persistence"
	CategoryForkBomb              = "fork_bomb"
	CategoryDatabaseDestruction   = "database_destruction"
	CategoryCustom                = "custom"
	CategorySafeReadonly          = "safe_readonly"
)

// SafetyPattern is one entry in the pattern library. A pattern matches
// either literally (exact command or command prefix at a token boundary)
// or through a compiled regular expression, never both.
type SafetyPattern struct {
	ID       string
	Category string
	Risk     domain.RiskLevel
	Custom   bool

	literal string
	re      *regexp.Regexp
}

// Matches reports whether the pattern applies to the command. Literal
// patterns match the exact command or a prefix followed by a space, so
// "rm -rf /" matches "rm -rf /" and "rm -rf / --no-preserve-root" but
// not "rm -rf /tmp".
func (p SafetyPattern) Matches(command string) bool {
	if p.re != nil {
		return p.re.MatchString(command)
	}
	return command == p.literal || strings.HasPrefix(command, p.literal+" ")
}

// IsLiteral reports whether the pattern is an exact-string rule, which
// carries higher match confidence than a regex rule.
func (p SafetyPattern) IsLiteral() bool { return p.re == nil }

// PatternMatch records one pattern that fired against a command.
type PatternMatch struct {
	ID       string
	Category string
	Risk     domain.RiskLevel
	Literal  bool
}

func literalPattern(id, category string, risk domain.RiskLevel, literal string) SafetyPattern {
	return SafetyPattern{ID: id, Category: category, Risk: risk, literal: literal}
}

func regexPattern(id, category string, risk domain.RiskLevel, expr string) SafetyPattern {
	return SafetyPattern{ID: id, Category: category, Risk: risk, re: regexp.MustCompile(expr)}
}

// builtinPatterns is the curated danger library. Categories group rules
// by the class of harm so confirmations and explanations can speak to
// the user in those terms.
func builtinPatterns() []SafetyPattern {
	return []SafetyPattern{
		// Filesystem destruction.
		literalPattern("rm_rf_root", CategoryFilesystemDestruction, domain.RiskCritical, "rm -rf /"),
		literalPattern("rm_rf_root_noslash", CategoryFilesystemDestruction, domain.RiskCritical, "rm -rf /*"),
		literalPattern("rm_rf_star", CategoryFilesystemDestruction, domain.RiskHigh, "rm -rf *"),
		literalPattern("rm_rf_dot", CategoryFilesystemDestruction, domain.RiskHigh, "rm -rf ."),
		literalPattern("rm_rf_home", CategoryFilesystemDestruction, domain.RiskCritical, "rm -rf ~"),
		regexPattern("rm_no_preserve_root", CategoryFilesystemDestruction, domain.RiskCritical, `rm\s+.*--no-preserve-root`),
		regexPattern("rm_rf_system_dir", CategoryFilesystemDestruction, domain.RiskCritical, `rm\s+(-\w*[rR]\w*\s+)+(/etc|/usr|/bin|/sbin|/boot|/var|/lib)(/\S*)?(\s|$)`),
		regexPattern("shred_device", CategoryFilesystemDestruction, domain.RiskCritical, `shred\s+.*/dev/\w+`),
		regexPattern("find_delete_root", CategoryFilesystemDestruction, domain.RiskCritical, `find\s+/\s+.*-delete`),
		regexPattern("find_exec_rm", CategoryFilesystemDestruction, domain.RiskHigh, `find\s+.*-exec\s+rm\b`),
		regexPattern("mv_to_devnull", CategoryFilesystemDestruction, domain.RiskHigh, `mv\s+\S+\s+/dev/null`),
		regexPattern("redirect_to_device", CategoryFilesystemDestruction, domain.RiskCritical, `>\s*/dev/(sd[a-z]|nvme\d+n\d+|hd[a-z])\b`),
		regexPattern("truncate_device", CategoryFilesystemDestruction, domain.RiskCritical, `truncate\s+.*/dev/\w+`),

		// Disk formatting and raw disk writes.
		regexPattern("dd_of_disk", CategoryDiskFormatting, domain.RiskCritical, `dd\s+.*of=/dev/(sd[a-z]|nvme\d+n\d+|hd[a-z]|vd[a-z])\b`),
		regexPattern("mkfs_disk", CategoryDiskFormatting, domain.RiskCritical, `mkfs(\.\w+)?\s+(-\S+\s+)*/dev/\w+`),
		regexPattern("fdisk_disk", CategoryDiskFormatting, domain.RiskHigh, `fdisk\s+/dev/\w+`),
		regexPattern("parted_disk", CategoryDiskFormatting, domain.RiskHigh, `parted\s+/dev/\w+`),
		regexPattern("wipefs_disk", CategoryDiskFormatting, domain.RiskCritical, `wipefs\s+(-\S+\s+)*/dev/\w+`),
		regexPattern("mkswap_disk", CategoryDiskFormatting, domain.RiskHigh, `mkswap\s+/dev/\w+`),

		// System modification.
		regexPattern("chmod_777", CategorySystemModification, domain.RiskHigh, `chmod\s+(-\w+\s+)*777\b`),
		regexPattern("chmod_recursive_root", CategorySystemModification, domain.RiskCritical, `chmod\s+-\w*[rR]\w*\s+\S+\s+/(\s|$)`),
		regexPattern("chown_recursive_system", CategorySystemModification, domain.RiskHigh, `chown\s+-\w*[rR]\w*\s+\S+\s+(/etc|/usr|/bin|/var)`),
		regexPattern("write_etc_passwd", CategorySystemModification, domain.RiskCritical, `>\s*/etc/(passwd|shadow|sudoers)\b`),
		regexPattern("edit_sudoers", CategorySystemModification, domain.RiskHigh, `(vi|vim|nano|emacs|sed)\s+.*/etc/sudoers\b`),
		regexPattern("sysctl_write", CategorySystemModification, domain.RiskHigh, `sysctl\s+-w\s+`),
		regexPattern("systemctl_disable", CategorySystemModification, domain.RiskHigh, `systemctl\s+(disable|mask|stop)\s+(firewalld|ufw|apparmor|selinux|auditd)\b`),
		regexPattern("iptables_flush", CategorySystemModification, domain.RiskHigh, `iptables\s+(-\S+\s+)*-F\b`),
		regexPattern("setenforce_off", CategorySystemModification, domain.RiskHigh, `setenforce\s+0\b`),
		regexPattern("mount_bind_root", CategorySystemModification, domain.RiskHigh, `mount\s+.*--bind\s+/\S*\s+/`),
		literalPattern("reboot_now", CategorySystemModification, domain.RiskHigh, "reboot"),
		regexPattern("shutdown_now", CategorySystemModification, domain.RiskHigh, `shutdown\s+(-h|-r|now)`),

		// Privilege escalation.
		literalPattern("sudo_su", CategoryPrivilegeEscalation, domain.RiskHigh, "sudo su"),
		literalPattern("sudo_bash", CategoryPrivilegeEscalation, domain.RiskHigh, "sudo bash"),
		literalPattern("sudo_shell", CategoryPrivilegeEscalation, domain.RiskHigh, "sudo sh"),
		literalPattern("su_root", CategoryPrivilegeEscalation, domain.RiskHigh, "su -"),
		regexPattern("sudo_chmod_setuid", CategoryPrivilegeEscalation, domain.RiskCritical, `chmod\s+(u\+s|[4-7][0-7]{3})\s+/`),
		regexPattern("passwd_root", CategoryPrivilegeEscalation, domain.RiskHigh, `passwd\s+root\b`),
		regexPattern("usermod_sudo_group", CategoryPrivilegeEscalation, domain.RiskHigh, `usermod\s+.*-aG\s+(sudo|wheel|root)\b`),

		// Remote code execution.
		regexPattern("curl_pipe_shell", CategoryRemoteExecution, domain.RiskCritical, `(curl|wget)\s+.*\|\s*(sudo\s+)?(bash|sh|zsh|fish)(\s|$)`),
		regexPattern("wget_execute", CategoryRemoteExecution, domain.RiskHigh, `wget\s+.*&&\s*(sh|bash|chmod\s+\+x)`),
		regexPattern("base64_decode_shell", CategoryRemoteExecution, domain.RiskCritical, `base64\s+(-d|--decode).*\|\s*(bash|sh)(\s|$)`),
		regexPattern("eval_download", CategoryRemoteExecution, domain.RiskCritical, `eval\s+.*\$\((curl|wget)\b`),
		regexPattern("python_remote_exec", CategoryRemoteExecution, domain.RiskHigh, `(curl|wget)\s+.*\|\s*python3?(\s|$)`),

		// Network backdoors and exfiltration.
		regexPattern("nc_listen_shell", CategoryNetworkBackdoor, domain.RiskCritical, `(nc|ncat|netcat)\s+.*-l.*\s+-e\s+`),
		regexPattern("nc_reverse_shell", CategoryNetworkBackdoor, domain.RiskCritical, `(nc|ncat|netcat)\s+\S+\s+\d+\s+-e\s+`),
		regexPattern("bash_dev_tcp", CategoryNetworkBackdoor, domain.RiskCritical, `/dev/tcp/\S+/\d+`),
		regexPattern("ssh_authorized_keys_write", CategoryNetworkBackdoor, domain.RiskHigh, `>>?\s*\S*\.ssh/authorized_keys`),
		regexPattern("exfil_pipe_upload", CategoryNetworkBackdoor, domain.RiskHigh, `(tar|cat|dd)\s+.*\|\s*(curl|nc|ncat)\b`),

		// Process manipulation.
		regexPattern("kill_all_processes", CategoryProcessManipulation, domain.RiskCritical, `kill\s+(-9\s+)?-1(\s|$)`),
		regexPattern("killall_init", CategoryProcessManipulation, domain.RiskCritical, `kill(all)?\s+.*\b(init|systemd)\b`),
		regexPattern("pkill_broad", CategoryProcessManipulation, domain.RiskHigh, `pkill\s+(-9\s+)?(-f\s+)?\.`),

		// Persistence.
		regexPattern("crontab_pipe", CategoryPersistence, domain.RiskHigh, `(echo|printf)\s+.*\|\s*crontab\b`),
		regexPattern("rc_local_write", CategoryPersistence, domain.RiskHigh, `>>?\s*/etc/rc\.local\b`),
		regexPattern("profile_write", CategoryPersistence, domain.RiskHigh, `>>?\s*(/etc/profile|\S*\.bashrc|\S*\.zshrc)(\s|$)`),
		regexPattern("systemd_unit_write", CategoryPersistence, domain.RiskHigh, `>>?\s*/etc/systemd/system/\S+\.service`),

		// Fork bombs.
		literalPattern("fork_bomb", CategoryForkBomb, domain.RiskCritical, ":(){ :|:& };:"),
		regexPattern("fork_bomb_variant", CategoryForkBomb, domain.RiskCritical, `\w+\(\)\s*\{\s*\w+\s*\|\s*\w+\s*&\s*\}\s*;\s*\w+`),
		regexPattern("yes_disk_fill", CategoryForkBomb, domain.RiskHigh, `yes\s*>\s*\S+`),

		// Database destruction.
		regexPattern("drop_database", CategoryDatabaseDestruction, domain.RiskCritical, `(?i)drop\s+database\b`),
		regexPattern("drop_table", CategoryDatabaseDestruction, domain.RiskHigh, `(?i)drop\s+table\b`),
		regexPattern("truncate_table", CategoryDatabaseDestruction, domain.RiskHigh, `(?i)truncate\s+table\b`),
		regexPattern("delete_without_where", CategoryDatabaseDestruction, domain.RiskHigh, `(?i)delete\s+from\s+\w+\s*(;|"|'|$)`),

		// Known-safe read-only commands. These never escalate risk; they
		// exist so the assessor has a high-confidence signal for everyday
		// commands instead of falling back to the heuristic score.
		regexPattern("safe_readonly", CategorySafeReadonly, domain.RiskSafe, `^(ls|pwd|whoami|date|echo|cat|less|more|head|tail|wc|which|type|file|stat|du|df|env|printenv|id|uname|hostname|uptime|history)(\s|$)`),
		regexPattern("safe_git_ro", CategorySafeReadonly, domain.RiskSafe, `^git\s+(status|log|diff|show|branch|remote|stash\s+list)(\s|$)`),
		regexPattern("safe_build", CategorySafeReadonly, domain.RiskSafe, `^(make|go\s+build|go\s+test|cargo\s+build|cargo\s+test|npm\s+test|npm\s+run)(\s|$)`),
		regexPattern("safe_help_version", CategorySafeReadonly, domain.RiskSafe, `^\S+\s+(--help|--version|-h|-V)$`),
	}
}

// PatternEngine holds the builtin library plus any custom additions and
// answers match queries. All methods are safe for concurrent use.
type PatternEngine struct {
	mu       sync.RWMutex
	patterns []SafetyPattern
	customN  int
}

// NewPatternEngine builds an engine preloaded with the builtin library.
func NewPatternEngine() *PatternEngine {
	return &PatternEngine{patterns: builtinPatterns()}
}

// Count returns the number of loaded patterns, builtin plus custom.
func (e *PatternEngine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.patterns)
}

// MatchAll returns every pattern that fires against the command, in
// library order.
func (e *PatternEngine) MatchAll(command string) []PatternMatch {
	e.mu.RLock()
	snapshot := e.patterns
	e.mu.RUnlock()

	var matches []PatternMatch
	for _, p := range snapshot {
		if p.Matches(command) {
			matches = append(matches, PatternMatch{
				ID:       p.ID,
				Category: p.Category,
				Risk:     p.Risk,
				Literal:  p.IsLiteral(),
			})
		}
	}
	return matches
}

// AddCustom compiles the given expressions as high-risk custom regex
// patterns. The operation is atomic: if any expression fails to compile,
// none are added and the error names the offending pattern.
func (e *PatternEngine) AddCustom(exprs []string) error {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("invalid custom pattern %q: %w", expr, err)
		}
		compiled = append(compiled, re)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// Copy-on-write so MatchAll readers holding the old slice stay valid.
	next := make([]SafetyPattern, len(e.patterns), len(e.patterns)+len(compiled))
	copy(next, e.patterns)
	for _, re := range compiled {
		e.customN++
		next = append(next, SafetyPattern{
			ID:       fmt.Sprintf("custom_%d", e.customN),
			Category: CategoryCustom,
			Risk:     domain.RiskHigh,
			Custom:   true,
			re:       re,
		})
	}
	e.patterns = next
	return nil
}
