package contextinfo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/doeshing/cmdwise/internal/domain"
	"github.com/doeshing/cmdwise/internal/ports"
)

// BasicCollector implements ContextCollector with tool and git detection.
// The recent command window is filled in by the query service from the
// history repository, not here.
type BasicCollector struct {
	toolsToCheck []string
}

func NewBasicCollector() *BasicCollector {
	return &BasicCollector{
		toolsToCheck: []string{"docker", "kubectl", "git", "npm", "yarn", "pnpm", "python", "python3", "go", "node", "cargo", "make"},
	}
}

// Collect gathers context data.
func (c *BasicCollector) Collect(ctx context.Context, cfg domain.Config, req domain.QueryRequest) (domain.ContextSnapshot, error) {
	wd, _ := os.Getwd()
	shell := detectShell()
	user := os.Getenv("USER")

	tools := c.detectTools()
	var gitStatus *domain.GitStatus
	if cfg.Context.IncludeGit || req.WithGitStatus {
		gitStatus = collectGitInfo(ctx, wd)
	}

	envVars := map[string]string{}
	if cfg.Context.IncludeEnv || req.WithEnv {
		envVars["PATH"] = os.Getenv("PATH")
		if editor := os.Getenv("EDITOR"); editor != "" {
			envVars["EDITOR"] = editor
		}
	}

	return domain.ContextSnapshot{
		WorkingDir:      wd,
		Shell:           shell,
		OS:              runtime.GOOS,
		User:            user,
		AvailableTools:  tools,
		Git:             gitStatus,
		EnvironmentVars: envVars,
	}, nil
}

func (c *BasicCollector) detectTools() []string {
	var available []string
	for _, tool := range c.toolsToCheck {
		if _, err := exec.LookPath(tool); err == nil {
			available = append(available, tool)
		}
	}
	sort.Strings(available)
	return available
}

func detectShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return filepath.Base(shell)
	}
	return "unknown"
}

func collectGitInfo(ctx context.Context, dir string) *domain.GitStatus {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return nil
	}
	branch := runCmd(ctx, dir, "git", "rev-parse", "--abbrev-ref", "HEAD")
	statusShort := runCmd(ctx, dir, "git", "status", "--short")
	modified := 0
	for _, line := range strings.Split(statusShort, "\n") {
		if strings.TrimSpace(line) != "" {
			modified++
		}
	}
	return &domain.GitStatus{
		Branch:        strings.TrimSpace(branch),
		ModifiedCount: modified,
		Summary:       strings.TrimSpace(statusShort),
	}
}

func runCmd(ctx context.Context, dir string, name string, args ...string) string {
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(cctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return ""
	}
	return string(out)
}

var _ ports.ContextCollector = (*BasicCollector)(nil)
