package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/pders01/git-continuity/internal/config"
	"github.com/pders01/git-continuity/internal/errors"
	"github.com/pders01/git-continuity/internal/testutil"
	"github.com/pders01/git-continuity/internal/transfer"
	"github.com/pders01/git-continuity/internal/ui"
)

// testEnv is a chdir'd temporary repository with isolated configuration
type testEnv struct {
	repo      *testutil.TempGitRepo
	patchDir  string
	hostsFile string
	runner    *recordingRunner
}

// scriptedPrompter answers prompts from prepared queues
type scriptedPrompter struct {
	confirms []bool
	choices  []string
	inputs   []string
	asked    []string
}

func (p *scriptedPrompter) Confirm(question string, def bool) (bool, error) {
	p.asked = append(p.asked, question)
	if len(p.confirms) == 0 {
		return false, errors.ErrCancelled
	}
	answer := p.confirms[0]
	p.confirms = p.confirms[1:]
	return answer, nil
}

func (p *scriptedPrompter) Choose(header string, options []string) (string, error) {
	p.asked = append(p.asked, header)
	if len(p.choices) == 0 {
		return "", errors.ErrCancelled
	}
	answer := p.choices[0]
	p.choices = p.choices[1:]
	return answer, nil
}

func (p *scriptedPrompter) Input(prompt, placeholder string) (string, error) {
	p.asked = append(p.asked, prompt)
	if len(p.inputs) == 0 {
		return "", errors.ErrCancelled
	}
	answer := p.inputs[0]
	p.inputs = p.inputs[1:]
	if answer == "" {
		return placeholder, nil
	}
	return answer, nil
}

func (p *scriptedPrompter) Interactive() bool {
	return true
}

type runCall struct {
	name string
	args []string
}

// recordingRunner stands in for ssh and scp
type recordingRunner struct {
	calls []runCall
	fail  map[string]error
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) error {
	r.calls = append(r.calls, runCall{name: name, args: args})
	return r.fail[name]
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	repo := testutil.NewTempGitRepo(t)
	t.Cleanup(repo.Cleanup)
	t.Cleanup(repo.Chdir())

	state := t.TempDir()
	env := &testEnv{
		repo:      repo,
		patchDir:  filepath.Join(state, "patches"),
		hostsFile: filepath.Join(state, "config", "hosts"),
		runner:    &recordingRunner{},
	}

	viper.Reset()
	config.SetDefaults()
	viper.Set(config.KeyPatchDir, env.patchDir)
	viper.Set(config.KeyHostsFile, env.hostsFile)
	viper.Set(config.KeySSHConfig, filepath.Join(state, "ssh_config"))
	viper.Set(config.KeyRenderTier, "plain")
	viper.Set(config.KeyUITier, "none")
	t.Cleanup(viper.Reset)

	noTransfer = false
	noPreview = false
	scpAlias = ""
	interactive = false
	previewJSON = false
	previewToon = false
	listJSON = false
	listToon = false
	listWatch = false
	configJSON = false
	configToon = false
	pruneDays = 0
	pruneForce = false

	oldPrompter, oldRunner := newPrompter, newRunner
	t.Cleanup(func() {
		newPrompter, newRunner = oldPrompter, oldRunner
	})
	usePrompter(ui.NonInteractive{})
	newRunner = func(*slog.Logger) transfer.Runner { return env.runner }

	return env
}

func usePrompter(p ui.Prompter) {
	newPrompter = func(*slog.Logger) (ui.Prompter, error) { return p, nil }
}

// patches returns the names of the files in the patch directory
func (e *testEnv) patches(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.patchDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("failed to read patch dir: %v", err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func (e *testEnv) readPatch(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.patchDir, name))
	if err != nil {
		t.Fatalf("failed to read patch: %v", err)
	}
	return data
}

// captureStdout runs fn and returns what it wrote to stdout
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	old := os.Stdout
	os.Stdout = w

	done := make(chan string)
	go func() {
		out, _ := io.ReadAll(r)
		done <- string(out)
	}()

	defer func() {
		os.Stdout = old
	}()
	fn()
	w.Close()
	return <-done
}
