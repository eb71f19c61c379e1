package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quipu-sh/quipu/internal/config"
	"github.com/quipu-sh/quipu/internal/script"
)

func TestReadScript_FromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "demo.qp")
	require.NoError(t, os.WriteFile(path, []byte("$ echo hi\n"), 0644))

	text, err := readScript([]string{path})
	require.NoError(t, err)
	require.Equal(t, "$ echo hi\n", text)
}

func TestReadScript_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := readScript([]string{filepath.Join(t.TempDir(), "nope.qp")})
	require.Error(t, err)
}

func TestSessionSettings_DirectivesOverrideDefaults(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Shell: "/bin/sh", Cols: 100, Rows: 30}
	s, err := script.Parse("@ shell:/bin/zsh\n@ size:120:40\n$ echo hi\n")
	require.NoError(t, err)

	shell, cols, rows := sessionSettings(cfg, s)
	require.Equal(t, "/bin/zsh", shell)
	require.Equal(t, uint16(120), cols)
	require.Equal(t, uint16(40), rows)
}

func TestSessionSettings_DirectivesAfterTypingAreIgnored(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Shell: "/bin/sh", Cols: 100, Rows: 30}
	s, err := script.Parse("$ echo hi\n@ shell:/bin/zsh\n@ size:120:40\n")
	require.NoError(t, err)

	shell, cols, rows := sessionSettings(cfg, s)
	require.Equal(t, "/bin/sh", shell)
	require.Equal(t, uint16(100), cols)
	require.Equal(t, uint16(30), rows)
}

func TestSessionSettings_LastDirectiveBeforeTypingWins(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Shell: "/bin/sh"}
	s, err := script.Parse("@ shell:/bin/zsh\n@ shell:/bin/fish\n$ echo hi\n")
	require.NoError(t, err)

	shell, _, _ := sessionSettings(cfg, s)
	require.Equal(t, "/bin/fish", shell)
}

func TestSessionSettings_FallbackSizeWithoutTerminal(t *testing.T) {
	t.Parallel()

	// Under `go test` stdout is not a terminal, so the 80x24 fallback
	// applies when no size is configured.
	cfg := &config.Config{Shell: "/bin/sh"}
	s := &script.Script{}

	_, cols, rows := sessionSettings(cfg, s)
	require.Equal(t, uint16(80), cols)
	require.Equal(t, uint16(24), rows)
}
