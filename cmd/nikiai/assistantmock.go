package main

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const mockUsage = "usage: assistant-mock [-p] [--seed <n>] [--scenario <name>] [--delay-ms <n>] [prompt|-]"

func newAssistantMockCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "assistant-mock [-p] [--seed <n>] [--scenario <name>] [--delay-ms <n>] [prompt|-]",
		Short:              "Deterministic stand-in for the assistant CLI",
		Long:               "Deterministic stand-in for the assistant CLI.\nScenarios: " + strings.Join(mockScenarioNames(), ", ") + ".",
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssistantMock(args, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runAssistantMock(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	cfg, err := parseMockArgs(args)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return err
	}
	prompt, err := resolveMockPrompt(cfg.prompt, stdin)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return err
	}
	cfg.prompt = prompt
	if !cfg.seedSet {
		cfg.seed = hashSeed(cfg.prompt, cfg.scenario)
	}

	scenario, err := pickScenario(cfg, buildScenarios())
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return err
	}
	if cfg.delay > 0 {
		time.Sleep(cfg.delay)
	}
	writer := bufio.NewWriter(stdout)
	defer func() { _ = writer.Flush() }()
	return scenario.run(cfg, writer, stderr)
}

type mockConfig struct {
	prompt   string
	seed     uint64
	seedSet  bool
	scenario string
	delay    time.Duration
}

type mockScenario struct {
	name string
	run  func(cfg mockConfig, stdout *bufio.Writer, stderr io.Writer) error
}

func parseMockArgs(args []string) (mockConfig, error) {
	var cfg mockConfig
	for len(args) > 0 {
		if args[0] == "-" {
			cfg.prompt = "-"
			return cfg, nil
		}
		if !strings.HasPrefix(args[0], "-") {
			cfg.prompt = strings.Join(args, " ")
			return cfg, nil
		}
		switch args[0] {
		case "-p", "--print":
			args = args[1:]
		case "-h", "--help":
			return mockConfig{}, errors.New(mockUsage)
		case "--seed":
			if len(args) < 2 {
				return mockConfig{}, errors.New("--seed requires a value")
			}
			val, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return mockConfig{}, fmt.Errorf("invalid --seed: %w", err)
			}
			cfg.seed = val
			cfg.seedSet = true
			args = args[2:]
		case "--scenario":
			if len(args) < 2 {
				return mockConfig{}, errors.New("--scenario requires a value")
			}
			cfg.scenario = args[1]
			args = args[2:]
		case "--delay-ms":
			if len(args) < 2 {
				return mockConfig{}, errors.New("--delay-ms requires a value")
			}
			val, err := strconv.Atoi(args[1])
			if err != nil || val < 0 {
				return mockConfig{}, errors.New("invalid --delay-ms")
			}
			cfg.delay = time.Duration(val) * time.Millisecond
			args = args[2:]
		default:
			return mockConfig{}, fmt.Errorf("unsupported flag: %s", args[0])
		}
	}
	return cfg, nil
}

func resolveMockPrompt(arg string, stdin io.Reader) (string, error) {
	if arg != "-" && strings.TrimSpace(arg) != "" {
		return arg, nil
	}
	if arg != "-" && isTerminalReader(stdin) {
		return "", errors.New("no prompt provided")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("no prompt provided via stdin")
	}
	return prompt, nil
}

func isTerminalReader(stdin io.Reader) bool {
	file, ok := stdin.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func hashSeed(parts ...string) uint64 {
	hasher := fnv.New64a()
	for _, part := range parts {
		_, _ = hasher.Write([]byte(part))
	}
	return hasher.Sum64()
}

func buildScenarios() []mockScenario {
	return []mockScenario{
		{name: "echo", run: scenarioEcho},
		{name: "code", run: scenarioCode},
		{name: "empty", run: scenarioEmpty},
		{name: "fail", run: scenarioFail},
	}
}

func mockScenarioNames() []string {
	scenarios := buildScenarios()
	names := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		names = append(names, s.name)
	}
	return names
}

// pickScenario defaults to echo so an unconfigured mock is predictable.
func pickScenario(cfg mockConfig, scenarios []mockScenario) (mockScenario, error) {
	name := cfg.scenario
	if name == "" {
		name = "echo"
	}
	for _, s := range scenarios {
		if s.name == name {
			return s, nil
		}
	}
	return mockScenario{}, fmt.Errorf("unknown scenario: %s", name)
}

func scenarioEcho(cfg mockConfig, w *bufio.Writer, _ io.Writer) error {
	_, err := fmt.Fprintln(w, mockReply(cfg.seed, mockUserText(cfg.prompt)))
	return err
}

func scenarioCode(cfg mockConfig, w *bufio.Writer, _ io.Writer) error {
	note, content, ok := mockCurrentNote(cfg.prompt)
	if !ok {
		note = "note"
		content = ""
	}
	edited := strings.TrimRight(content, "\n")
	if edited != "" {
		edited += "\n"
	}
	edited += "Edited by assistant-mock."
	_, err := fmt.Fprintf(w, "Here is the updated %s:\n\n```markdown\n%s\n```\n", note, edited)
	return err
}

func scenarioEmpty(_ mockConfig, w *bufio.Writer, _ io.Writer) error {
	_, err := w.WriteString("\n")
	return err
}

func scenarioFail(_ mockConfig, _ *bufio.Writer, stderr io.Writer) error {
	err := errors.New("mock failure: simulated assistant error")
	_, _ = fmt.Fprintln(stderr, err.Error())
	return err
}

// mockUserText returns the text after the last [User] header.
func mockUserText(prompt string) string {
	const header = "[User]\n"
	if idx := strings.LastIndex(prompt, header); idx >= 0 {
		return strings.TrimSpace(prompt[idx+len(header):])
	}
	return strings.TrimSpace(prompt)
}

// mockCurrentNote extracts the path and body of the current note section.
func mockCurrentNote(prompt string) (string, string, bool) {
	const header = "[@ Current note: "
	start := strings.Index(prompt, header)
	if start < 0 {
		return "", "", false
	}
	rest := prompt[start+len(header):]
	end := strings.Index(rest, "]\n")
	if end < 0 {
		return "", "", false
	}
	note := rest[:end]
	body := rest[end+2:]
	for _, next := range []string{"\n\n[Conversation]\n", "\n\n[User]\n"} {
		if idx := strings.Index(body, next); idx >= 0 {
			body = body[:idx]
		}
	}
	return note, body, true
}

func mockReply(seed uint64, text string) string {
	templates := []string{
		"Mock response: handled request \"%s\".",
		"Mock response: noted \"%s\".",
		"Mock response: summarized \"%s\".",
		"Mock response: answered \"%s\".",
	}
	idx := int(seed % uint64(len(templates)))
	return fmt.Sprintf(templates[idx], text)
}
