package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrPatchNotFound, "resolving nightly.patch")

	assert.True(t, Is(wrapped, ErrPatchNotFound))
	assert.Equal(t, "resolving nightly.patch: patch file not found", wrapped.Error())
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrMalformedPatch, "line %d", 7)

	assert.True(t, Is(wrapped, ErrMalformedPatch))
	assert.Equal(t, "line 7: malformed patch", wrapped.Error())
}

func TestCommandError(t *testing.T) {
	cause := errors.New("exit status 1")
	cmdErr := NewCommandError("git", []string{"apply", "--index"}, cause, "error: patch failed: main.go:3\n")

	assert.Equal(t, "git apply --index failed: error: patch failed: main.go:3: exit status 1", cmdErr.Error())
	assert.True(t, errors.Is(cmdErr, cause))

	var target *CommandError
	assert.True(t, As(Wrap(cmdErr, "applying staged changes"), &target))
	assert.Equal(t, "git", target.Command)
}

func TestCommandErrorWithoutOutput(t *testing.T) {
	cmdErr := NewCommandError("scp", []string{"a.patch", "box:/tmp/"}, ErrTransferFailed, "  ")

	assert.Equal(t, "scp a.patch box:/tmp/ failed: transfer failed", cmdErr.Error())
	assert.True(t, Is(cmdErr, ErrTransferFailed))
}

func TestConfigError(t *testing.T) {
	configErr := NewConfigError("render.tier", "fancy", ErrInvalidConfiguration)
	assert.Equal(t, "configuration error for render.tier = fancy: invalid configuration", configErr.Error())
	assert.True(t, Is(configErr, ErrInvalidConfiguration))

	configErr = NewConfigError("patch_dir", nil, ErrInvalidConfiguration)
	assert.Equal(t, "configuration error for patch_dir: invalid configuration", configErr.Error())
}
