package safety

import "testing"

func TestInformationGatheringFlagRaised(t *testing.T) {
	analyzer := NewBehavioralAnalyzer()
	window := []string{
		"ps aux | grep ssh",
		"netstat -tulpn",
		"cat /etc/passwd",
	}
	flags := analyzer.Flags("find /home -name '*.key'", window)
	if len(flags) != 1 || flags[0] != FlagInformationGathering {
		t.Fatalf("expected information_gathering flag, got %v", flags)
	}
}

func TestNoFlagBelowThreshold(t *testing.T) {
	analyzer := NewBehavioralAnalyzer()

	// Two distinct categories stay under the threshold of three.
	window := []string{"ps aux", "netstat -an"}
	if flags := analyzer.Flags("ls -la", window); len(flags) != 0 {
		t.Fatalf("two categories should not flag, got %v", flags)
	}

	// Repeated commands in one category count once.
	window = []string{"ps aux", "ps -ef", "top", "lsof"}
	if flags := analyzer.Flags("pgrep nginx", window); len(flags) != 0 {
		t.Fatalf("one repeated category should not flag, got %v", flags)
	}
}

func TestCurrentCommandCountsTowardThreshold(t *testing.T) {
	analyzer := NewBehavioralAnalyzer()
	window := []string{"ps aux", "netstat -tulpn"}
	flags := analyzer.Flags("cat ~/.ssh/id_rsa", window)
	if len(flags) != 1 {
		t.Fatalf("current command should complete the threshold, got %v", flags)
	}
}

func TestKeywordsMatchWholeTokensOnly(t *testing.T) {
	analyzer := NewBehavioralAnalyzer()

	// "stop" contains "top" and "less" contains "ss", but neither is a
	// reconnaissance command; only the credential read should register.
	window := []string{"systemctl stop nginx", "less -R notes.txt"}
	if flags := analyzer.Flags("cat /etc/passwd", window); len(flags) != 0 {
		t.Fatalf("embedded substrings should not count as categories, got %v", flags)
	}

	// The genuine commands still register at token boundaries.
	window = []string{"top", "cat /etc/passwd"}
	flags := analyzer.Flags("ss -tulpn", window)
	if len(flags) != 1 || flags[0] != FlagInformationGathering {
		t.Fatalf("whole-token commands should flag, got %v", flags)
	}
}

func TestEmptyWindowNeverFlags(t *testing.T) {
	analyzer := NewBehavioralAnalyzer()
	if flags := analyzer.Flags("cat /etc/passwd", nil); len(flags) != 0 {
		t.Fatalf("single command with empty window should not flag, got %v", flags)
	}
}
