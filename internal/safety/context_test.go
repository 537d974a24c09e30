package safety

import "testing"

func TestSensitivityDelta(t *testing.T) {
	analyzer := NewContextAnalyzer()
	tests := []struct {
		dir  string
		want int
	}{
		{"/tmp", 0},
		{"/tmp/build", 0},
		{"/var/tmp/cache", 0},
		{"/home/alex/projects", 0},
		{"/Users/alex", 0},
		{"/var/log", 1},
		{"/var/log/nginx", 1},
		{"/var/lib/docker", 1},
		{"/usr/local/bin", 2},
		{"/bin", 2},
		{"/proc/sys", 2},
		{"/etc", 3},
		{"/etc/nginx", 3},
		{"/boot/grub", 3},
		{"/sys/kernel", 3},
		{"/opt/app", 2},
		{"", 0},
		{"relative/path", 0},
	}
	for _, tt := range tests {
		if got := analyzer.SensitivityDelta(tt.dir); got != tt.want {
			t.Errorf("delta(%q) = %d, want %d", tt.dir, got, tt.want)
		}
	}
}

func TestLongestPrefixWins(t *testing.T) {
	analyzer := NewContextAnalyzer()
	// /var/tmp is scratch space even though /var escalates.
	if got := analyzer.SensitivityDelta("/var/tmp"); got != 0 {
		t.Fatalf("/var/tmp delta = %d, want 0", got)
	}
	if got := analyzer.SensitivityDelta("/var/spool"); got != 1 {
		t.Fatalf("/var/spool delta = %d, want 1", got)
	}
	// Prefix matching is per path segment, not per character.
	if got := analyzer.SensitivityDelta("/etcetera"); got != 2 {
		t.Fatalf("/etcetera should fall back to the generic absolute-path delta, got %d", got)
	}
}
