package safety

import "testing"

func TestExtractFeaturesEmptyCommand(t *testing.T) {
	f := ExtractFeatures("")
	if len(f.Tokens) != 0 || f.DestructiveScore != 0 || f.Scope != ScopeSingleFile {
		t.Fatalf("empty command should yield neutral features, got %+v", f)
	}
	f = ExtractFeatures("   ")
	if len(f.Tokens) != 0 {
		t.Fatalf("whitespace command should yield no tokens, got %+v", f.Tokens)
	}
}

func TestExtractFeaturesCombinedFlags(t *testing.T) {
	f := ExtractFeatures("rm -rf build")
	if !f.RecursiveFlag {
		t.Fatal("-rf should register the recursive flag")
	}
	if !f.ForceFlag {
		t.Fatal("-rf should register the force flag")
	}
	if !f.Flags["-rf"] || !f.Flags["-r"] || !f.Flags["-f"] {
		t.Fatalf("combined short flags should expand, got %v", f.Flags)
	}
}

func TestDestructiveScores(t *testing.T) {
	tests := []struct {
		command string
		min     float64
		max     float64
	}{
		{"ls -la", 0, 0},
		{"rm notes.txt", 0.7, 0.7},
		{"rm -rf build", 1.0, 1.0},
		{"dd if=/dev/zero of=out.img", 0.9, 0.9},
		{"mkfs.ext4 /dev/sdb1", 1.0, 1.0},
		{"chmod 644 file", 0.3, 0.3},
		{"truncate -s 0 app.log", 0.5, 0.5},
		{`mysql -e "DROP DATABASE prod"`, 0.9, 1.0},
		// Force and recursive bonuses apply even when the base command
		// carries no destructive weight of its own.
		{"cp -rf src dst", 0.4, 0.4},
		{"tar -xzf backup.tgz", 0.2, 0.2},
	}
	for _, tt := range tests {
		f := ExtractFeatures(tt.command)
		if f.DestructiveScore < tt.min || f.DestructiveScore > tt.max {
			t.Errorf("%q destructive score = %v, want in [%v, %v]", tt.command, f.DestructiveScore, tt.min, tt.max)
		}
	}
}

func TestPrivilegeDetection(t *testing.T) {
	tests := []struct {
		command string
		want    PrivilegeLevel
	}{
		{"ls", PrivilegeUser},
		{"sudo apt update", PrivilegeElevated},
		{"doas pkg_add vim", PrivilegeElevated},
		{"su - admin", PrivilegeRoot},
		{"sudo su", PrivilegeRoot},
	}
	for _, tt := range tests {
		if got := ExtractFeatures(tt.command).Privilege; got != tt.want {
			t.Errorf("%q privilege = %v, want %v", tt.command, got, tt.want)
		}
	}
}

func TestScopeDetection(t *testing.T) {
	tests := []struct {
		command string
		want    TargetScope
	}{
		{"cat notes.txt", ScopeSingleFile},
		{"rm *.log", ScopeLocalFiles},
		{"rm -r build", ScopeRecursive},
		{"curl https://example.com/install.sh", ScopeNetwork},
		{"rm /usr/bin/tool", ScopeSystem},
		{"rm -rf /", ScopeRoot},
		{"rm /home/user/file", ScopeSingleFile},
	}
	for _, tt := range tests {
		if got := ExtractFeatures(tt.command).Scope; got != tt.want {
			t.Errorf("%q scope = %v, want %v", tt.command, got, tt.want)
		}
	}
}

func TestOperatorDetectionRespectsQuotes(t *testing.T) {
	f := ExtractFeatures(`echo "a|b"`)
	if f.HasPipe {
		t.Fatal("pipe inside double quotes should not count")
	}
	f = ExtractFeatures("cat access.log | grep error")
	if !f.HasPipe {
		t.Fatal("unquoted pipe should count")
	}
	f = ExtractFeatures("make && make install")
	if !f.HasLogicOps {
		t.Fatal("&& should register logic operators")
	}
	if f.HasPipe {
		t.Fatal("|| and && must not register as a pipe")
	}
}

func TestBackgroundDetection(t *testing.T) {
	tests := []struct {
		command string
		want    bool
	}{
		{"sleep 300 &", true},
		{"sleep 5 & echo hi", true},
		{"make && make install", false},
		{`echo "a & b"`, false},
		{"ls > out.log 2>&1", false},
		{"nohup server &> server.log", false},
	}
	for _, tt := range tests {
		if got := ExtractFeatures(tt.command).HasBackground; got != tt.want {
			t.Errorf("%q HasBackground = %v, want %v", tt.command, got, tt.want)
		}
	}
}

func TestVectorShape(t *testing.T) {
	v := ExtractFeatures("sudo rm -rf /var/log").Vector()
	if len(v) != 30 {
		t.Fatalf("vector length = %d, want 30", len(v))
	}
	for i, val := range v {
		if val < 0 || val > 1 {
			t.Fatalf("vector[%d] = %v, want value in [0, 1]", i, val)
		}
	}
	for i := 20; i < 30; i++ {
		if v[i] != 0 {
			t.Fatalf("reserved slot %d should be zero, got %v", i, v[i])
		}
	}
}
