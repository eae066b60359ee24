package scarb_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"starklings/exercise"
	"starklings/scarb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intro1.cairo")
	require.NoError(t, os.WriteFile(path, []byte("fn main() {}\n"), 0644))
	ctx := context.Background()

	t.Run("captures output", func(t *testing.T) {
		backend := scarb.NewBackend(scarb.Commands{
			Build: `echo "compiling ${EXERCISE##*/}"; echo warning >&2`,
		}, dir)
		out, err := backend.Build(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "compiling intro1.cairo\n", out.Stdout)
		assert.Equal(t, "warning\n", out.Stderr)
	})

	t.Run("exit status is a backend failure", func(t *testing.T) {
		backend := scarb.NewBackend(scarb.Commands{
			Test: `echo "test failed" >&2; exit 3`,
		}, dir)
		out, err := backend.Test(ctx, path)
		require.Error(t, err)
		assert.ErrorIs(t, err, exercise.ErrBackendFailure)
		assert.Equal(t, "test failed\n", out.Stderr)

		var cmdErr *scarb.CommandError
		require.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, 3, cmdErr.ExitStatus)
		assert.Equal(t, "test", cmdErr.Op)
		assert.Equal(t, out, cmdErr.Output)
	})

	t.Run("parse error", func(t *testing.T) {
		backend := scarb.NewBackend(scarb.Commands{Run: `if then fi (`}, dir)
		_, err := backend.Run(ctx, path)
		assert.ErrorIs(t, err, exercise.ErrBackendFailure)
	})

	t.Run("artifact removed after the call", func(t *testing.T) {
		backend := scarb.NewBackend(scarb.Commands{
			Build: `echo artifact > "$OUTPUT" && test -f "$OUTPUT" && echo "$OUTPUT"`,
		}, dir)
		out, err := backend.Build(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, scarb.TempFile()+"\n", out.Stdout)
		assert.NoFileExists(t, scarb.TempFile())
	})

	t.Run("artifact removed after a failure", func(t *testing.T) {
		backend := scarb.NewBackend(scarb.Commands{
			Build: `echo artifact > "$OUTPUT"; exit 1`,
		}, dir)
		_, err := backend.Build(ctx, path)
		require.Error(t, err)
		assert.NoFileExists(t, scarb.TempFile())
	})

	t.Run("defaults fill empty commands", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("fake toolchain is a shell script")
		}
		bin := t.TempDir()
		fake := "#!/bin/sh\necho \"fake cairo-run $*\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(bin, "cairo-run"), []byte(fake), 0755))
		t.Setenv("PATH", bin)

		backend := scarb.NewBackend(scarb.Commands{Build: `echo x`}, dir)
		out, err := backend.Build(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "x\n", out.Stdout)

		out, err = backend.Run(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "fake cairo-run --single-file "+path+"\n", out.Stdout)
	})
}

func TestTempFileHandle(t *testing.T) {
	guard := scarb.Acquire()
	require.NoError(t, os.WriteFile(guard.Path(), []byte("x"), 0644))

	func() {
		defer guard.Release()
	}()
	assert.NoFileExists(t, guard.Path())

	assert.NotPanics(t, guard.Release)
}
