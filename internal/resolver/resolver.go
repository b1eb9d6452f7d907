package resolver

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"pkt.systems/nikiai/schema"
)

// Mode describes how an invocation is executed.
type Mode string

const (
	// ModeShell runs a user-configured command line through the system shell.
	ModeShell Mode = "shell"
	// ModeDirect runs a detected binary without a shell.
	ModeDirect Mode = "direct"
)

// Invocation is a fully resolved assistant call.
type Invocation struct {
	Mode Mode
	Path string
	Args []string
	Dir  string
	Env  []string
	// Stdin is written to the process when UseStdin is set.
	Stdin    string
	UseStdin bool
}

// Config controls command resolution.
type Config struct {
	// Command is the user-configured command line; empty enables detection.
	Command    string
	WorkingDir string
	Home       string
	// Environ is the inherited environment; nil means os.Environ().
	Environ []string
	// Candidates overrides DefaultAssistantCandidates when non-nil.
	Candidates []string
	// NodeCandidates overrides DefaultNodeCandidates when non-nil.
	NodeCandidates []string
	// NVMRoot overrides ~/.nvm/versions/node when non-empty.
	NVMRoot string
}

// Resolver turns prompts into invocations.
type Resolver struct {
	cfg Config
}

// New constructs a Resolver, filling defaults from the current process.
func New(cfg Config) *Resolver {
	if cfg.Home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Home = home
		}
	}
	if cfg.Environ == nil {
		cfg.Environ = os.Environ()
	}
	if cfg.Candidates == nil {
		cfg.Candidates = DefaultAssistantCandidates(cfg.Home)
	}
	if cfg.NodeCandidates == nil {
		cfg.NodeCandidates = DefaultNodeCandidates(cfg.Home)
	}
	if cfg.NVMRoot == "" && cfg.Home != "" {
		cfg.NVMRoot = filepath.Join(cfg.Home, ".nvm", "versions", "node")
	}
	return &Resolver{cfg: cfg}
}

// NormalizeCommand trims command and expands a leading directory to the
// assistant binary inside it.
func NormalizeCommand(command string) string {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return ""
	}
	first := strings.Fields(trimmed)[0]
	if IsDirectory(first) {
		return strings.Replace(trimmed, first, filepath.Join(first, schema.DefaultAssistantName), 1)
	}
	return trimmed
}

// FindAssistantBinary returns the first executable well-known assistant location,
// then falls back to the derived PATH.
func (r *Resolver) FindAssistantBinary() string {
	if found := FirstExecutable(r.cfg.Candidates); found != "" {
		return found
	}
	pathValue, _ := lookupEnv(r.Env(), "PATH")
	return LookPath(schema.DefaultAssistantName, pathValue)
}

// FindNodeBinary returns a node executable from the well-known locations or nvm.
func (r *Resolver) FindNodeBinary() string {
	if found := FirstExecutable(r.cfg.NodeCandidates); found != "" {
		return found
	}
	if r.cfg.NVMRoot != "" {
		return LatestNVMNode(r.cfg.NVMRoot)
	}
	return ""
}

// Env returns the derived environment used for every invocation.
func (r *Resolver) Env() []string {
	return BuildEnv(r.cfg.Environ, r.cfg.Home, r.FindNodeBinary())
}

// Resolve builds the invocation for prompt.
func (r *Resolver) Resolve(prompt string) (Invocation, error) {
	env := r.Env()
	if command := NormalizeCommand(r.cfg.Command); command != "" {
		inline := HasPlaceholder(command)
		final := command
		if inline {
			final = ReplacePlaceholder(command, prompt)
		}
		shell, args := shellCommand(final)
		inv := Invocation{
			Mode: ModeShell,
			Path: shell,
			Args: args,
			Dir:  r.cfg.WorkingDir,
			Env:  env,
		}
		if !inline {
			inv.Stdin = prompt
			inv.UseStdin = true
		}
		return inv, nil
	}

	binary := r.FindAssistantBinary()
	if binary == "" {
		return Invocation{}, schema.ErrAssistantNotFound
	}
	inv := Invocation{
		Mode:     ModeDirect,
		Path:     binary,
		Dir:      r.cfg.WorkingDir,
		Env:      env,
		Stdin:    prompt,
		UseStdin: true,
	}
	if IsNodeScript(binary) {
		if node := r.nodeFor(env); node != "" {
			inv.Path = node
			inv.Args = []string{binary}
		}
	}
	return inv, nil
}

func (r *Resolver) nodeFor(env []string) string {
	if node := r.FindNodeBinary(); node != "" {
		return node
	}
	pathValue, _ := lookupEnv(env, "PATH")
	return LookPath("node", pathValue)
}

func shellCommand(command string) (string, []string) {
	if runtime.GOOS == "windows" {
		shell := os.Getenv("ComSpec")
		if shell == "" {
			shell = "cmd.exe"
		}
		return shell, []string{"/d", "/s", "/c", command}
	}
	return "/bin/sh", []string{"-c", command}
}

// Report summarises resolution state for diagnostics.
type Report struct {
	Configured string
	Normalized string
	Detected   string
	NodeScript bool
	Node       string
	Path       string
}

// Inspect reports how a prompt would be resolved without running anything.
func (r *Resolver) Inspect() Report {
	report := Report{
		Configured: strings.TrimSpace(r.cfg.Command),
		Normalized: NormalizeCommand(r.cfg.Command),
		Node:       r.FindNodeBinary(),
	}
	report.Path, _ = lookupEnv(r.Env(), "PATH")
	if report.Normalized == "" {
		report.Detected = r.FindAssistantBinary()
		report.NodeScript = report.Detected != "" && IsNodeScript(report.Detected)
	}
	return report
}
