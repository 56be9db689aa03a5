package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	err := New(ErrConfig, "Cluster not found", "Run 'gpumon cluster list' to see available clusters")

	assert.Equal(t, ErrConfig, err.Code)
	assert.Contains(t, err.Error(), "✗ Cluster not found")
	assert.Contains(t, err.Error(), "gpumon cluster list")
}

func TestWrapWithCode(t *testing.T) {
	cause := stderrors.New("exit status 127")
	err := WrapWithCode(cause, ErrExec, "Telemetry query failed", "Check nvidia-smi is installed")

	assert.Equal(t, ErrExec, err.Code)
	assert.Contains(t, err.Error(), "Telemetry query failed")
	assert.Contains(t, err.Error(), "exit status 127")
	assert.Contains(t, err.Error(), "nvidia-smi")
	require.ErrorIs(t, err, cause)
}

func TestIsCode(t *testing.T) {
	err := New(ErrExec, "bad output", "")

	assert.True(t, IsCode(err, ErrExec))
	assert.False(t, IsCode(err, ErrSSH))
	assert.False(t, IsCode(nil, ErrExec))
	assert.False(t, IsCode(stderrors.New("plain"), ErrExec))
}

func TestIsCodeThroughWrapping(t *testing.T) {
	inner := New(ErrSSH, "handshake failed", "")
	outer := WrapWithCode(inner, ErrExec, "fetch failed", "")

	// errors.As finds the outermost structured error first.
	assert.True(t, IsCode(outer, ErrExec))
}
