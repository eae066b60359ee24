package cli_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"starklings/cli"
	"starklings/exercise"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workspace struct {
	dir    string
	config string
}

func newWorkspace(t *testing.T, build string) workspace {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"intro1.cairo": "fn main() {}\n",
		"intro2.cairo": "fn main() {\n    // I AM NOT DONE\n    let x = 1\n}\n",
		"tests1.cairo": "// I AM NOT DONE\n#[test]\nfn it_works() {}\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	info := `exercises:
  - {name: intro1, path: intro1.cairo, mode: build, hint: Nothing to do.}
  - {name: intro2, path: intro2.cairo, mode: run, hint: Add a semicolon.}
  - {name: tests1, path: tests1.cairo, mode: test, hint: Make the test pass.}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "info.yaml"), []byte(info), 0644))

	config := fmt.Sprintf(`info_file: %s
log_level: warn
backend:
  commands:
    build: %q
    run: 'echo "ran ${EXERCISE##*/}"'
    test: 'echo "tested ${EXERCISE##*/}"'
`, filepath.Join(dir, "info.yaml"), build)
	configFile := filepath.Join(dir, "starklings.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(config), 0644))
	return workspace{dir: dir, config: configFile}
}

func (w workspace) run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", w.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	w := newWorkspace(t, `echo built`)

	t.Run("list", func(t *testing.T) {
		out, err := w.run("list")
		require.NoError(t, err)
		assert.Contains(t, out, "intro1 [done] build")
		assert.Contains(t, out, "intro2 [pending] run")
		assert.Contains(t, out, "Progress: 1/3")
	})

	t.Run("info", func(t *testing.T) {
		out, err := w.run("info", "intro2")
		require.NoError(t, err)
		assert.Contains(t, out, "Exercise: intro2")
		assert.Contains(t, out, "Mode: run")
	})

	t.Run("hint", func(t *testing.T) {
		out, err := w.run("hint", "tests1")
		require.NoError(t, err)
		assert.Equal(t, "Make the test pass.\n", out)
	})

	t.Run("state", func(t *testing.T) {
		out, err := w.run("state", "intro2")
		require.NoError(t, err)
		assert.Contains(t, out, "Exercise 'intro2' is NOT DONE. Context:")
		assert.Contains(t, out, "* 2:     // I AM NOT DONE")
	})

	t.Run("unknown exercise", func(t *testing.T) {
		_, err := w.run("state", "nope")
		assert.ErrorIs(t, err, exercise.ErrNotFound)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := w.run("info")
		assert.Error(t, err)
	})

	t.Run("run", func(t *testing.T) {
		out, err := w.run("run", "intro2")
		require.NoError(t, err)
		assert.Contains(t, out, "Exercise 'intro2' run succeeded")
		assert.Contains(t, out, "ran intro2.cairo")
	})

	t.Run("verify stops at the first pending exercise", func(t *testing.T) {
		out, err := w.run("verify")
		require.NoError(t, err)
		assert.Contains(t, out, "Exercise 'intro1' build succeeded")
		assert.Contains(t, out, "Exercise 'intro2' is NOT DONE. Context:")
		assert.NotContains(t, out, "tests1")
	})

	t.Run("verify one exercise", func(t *testing.T) {
		out, err := w.run("verify", "intro1")
		require.NoError(t, err)
		assert.Equal(t, "Exercise 'intro1' build succeeded\n", out)
	})

	t.Run("done then verify all", func(t *testing.T) {
		out, err := w.run("done", "intro2")
		require.NoError(t, err)
		assert.Contains(t, out, "Exercise 'intro2' is marked as DONE.")

		_, err = w.run("done", "tests1")
		require.NoError(t, err)

		out, err = w.run("verify")
		require.NoError(t, err)
		assert.Contains(t, out, "Exercise 'tests1' test succeeded")
		assert.Contains(t, out, "All exercises are done!")

		data, err := os.ReadFile(filepath.Join(w.dir, "intro2.cairo"))
		require.NoError(t, err)
		assert.Equal(t, "fn main() {\n\n    let x = 1\n}\n", string(data))
	})
}

func TestVerifyBackendFailure(t *testing.T) {
	w := newWorkspace(t, `echo "error: expected ';'" >&2; exit 1`)

	out, err := w.run("verify")
	require.ErrorIs(t, err, exercise.ErrBackendFailure)
	assert.Contains(t, out, "Exercise 'intro1' failed to build")
	assert.Contains(t, out, "** stderr **\nerror: expected ';'\n")
	assert.NotContains(t, out, "intro2")
}

func TestInfoFlagOverridesConfig(t *testing.T) {
	w := newWorkspace(t, `echo built`)
	other := filepath.Join(t.TempDir(), "info.yaml")
	require.NoError(t, os.WriteFile(other, []byte("exercises: []\n"), 0644))

	out, err := w.run("--info", other, "list")
	require.NoError(t, err)
	assert.Equal(t, "Progress: 0/0\n", out)
}
