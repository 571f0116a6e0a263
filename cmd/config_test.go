package cmd

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/pders01/git-continuity/internal/hosts"
)

func readHostsFile(t *testing.T, env *testEnv) string {
	t.Helper()
	data, err := os.ReadFile(env.hostsFile)
	if err != nil {
		t.Fatalf("failed to read hosts file: %v", err)
	}
	return string(data)
}

func TestConfigAddAndReplace(t *testing.T) {
	env := setupTest(t)

	if err := runConfigAdd(nil, []string{"devbox", "me@devbox.local", "~/patches"}); err != nil {
		t.Fatalf("config add failed: %v", err)
	}
	if err := runConfigAdd(nil, []string{"devbox", "me@devbox2.local"}); err != nil {
		t.Fatalf("config add failed: %v", err)
	}

	want := "devbox_HOST='me@devbox2.local'\ndevbox_PATH=''\n"
	if got := readHostsFile(t, env); got != want {
		t.Errorf("expected hosts file %q, got %q", want, got)
	}
}

func TestConfigAddRejectsBadAlias(t *testing.T) {
	setupTest(t)

	if err := runConfigAdd(nil, []string{"dev box", "me@devbox"}); err == nil {
		t.Fatal("expected an error for an alias with a space")
	}
}

func TestConfigListJSON(t *testing.T) {
	setupTest(t)

	for _, args := range [][]string{
		{"zeta", "z@zeta"},
		{"alpha", "a@alpha", "/srv"},
	} {
		if err := runConfigAdd(nil, args); err != nil {
			t.Fatalf("config add failed: %v", err)
		}
	}

	configJSON = true
	out := captureStdout(t, func() {
		if err := runConfigList(nil, nil); err != nil {
			t.Errorf("config list failed: %v", err)
		}
	})

	var entries []hosts.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(entries) != 2 || entries[0].Alias != "alpha" || entries[1].Alias != "zeta" {
		t.Errorf("expected alpha and zeta in order, got %v", entries)
	}
	if entries[0].RemoteDir != "/srv" {
		t.Errorf("expected /srv, got %q", entries[0].RemoteDir)
	}
}

func TestConfigRemove(t *testing.T) {
	env := setupTest(t)

	if err := runConfigAdd(nil, []string{"devbox", "me@devbox"}); err != nil {
		t.Fatalf("config add failed: %v", err)
	}
	if err := runConfigAdd(nil, []string{"laptop", "me@laptop"}); err != nil {
		t.Fatalf("config add failed: %v", err)
	}

	if err := runConfigRemove(nil, []string{"devbox"}); err != nil {
		t.Fatalf("config remove failed: %v", err)
	}
	if got := readHostsFile(t, env); strings.Contains(got, "devbox") {
		t.Errorf("devbox still present: %q", got)
	}

	// Removing an unknown alias is not an error
	if err := runConfigRemove(nil, []string{"devbox"}); err != nil {
		t.Fatalf("removing unknown alias failed: %v", err)
	}
}

func TestConfigInteractiveLoop(t *testing.T) {
	env := setupTest(t)

	usePrompter(&scriptedPrompter{
		choices: []string{choiceAddHost, choiceListHosts, choiceRemoveHost, "devbox", choiceDone},
		inputs:  []string{"devbox", "me@devbox", ""},
	})

	out := captureStdout(t, func() {
		if err := runConfig(nil, nil); err != nil {
			t.Errorf("config failed: %v", err)
		}
	})

	if !strings.Contains(out, "Saved host devbox") || !strings.Contains(out, "Removed host devbox") {
		t.Errorf("unexpected output %q", out)
	}
	if got := readHostsFile(t, env); got != "" {
		t.Errorf("expected empty hosts file, got %q", got)
	}
}

func TestConfigNonInteractiveLists(t *testing.T) {
	setupTest(t)

	if err := runConfigAdd(nil, []string{"devbox", "me@devbox"}); err != nil {
		t.Fatalf("config add failed: %v", err)
	}

	out := captureStdout(t, func() {
		if err := runConfig(nil, nil); err != nil {
			t.Errorf("config failed: %v", err)
		}
	})
	if !strings.Contains(out, "devbox") || !strings.Contains(out, "me@devbox") {
		t.Errorf("expected host listing, got %q", out)
	}
}
