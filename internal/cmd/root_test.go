package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		cmd := NewRootCommand()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs([]string{"version"})

		require.NoError(t, cmd.Execute())
		assert.Equal(t, "dev\n", out.String())
	})

	t.Run("subcommands", func(t *testing.T) {
		cmd := NewRootCommand()
		for _, args := range [][]string{
			{"employers", "sync"},
			{"events", "sync"},
			{"serve"},
			{"forms", "seed"},
		} {
			found, _, err := cmd.Find(args)
			require.NoError(t, err)
			assert.Equal(t, args[len(args)-1], found.Name())
		}
	})

	t.Run("sync requires config", func(t *testing.T) {
		cmd := NewRootCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"events", "sync"})

		assert.ErrorContains(t, cmd.Execute(), "config")
	})

	t.Run("sync rejects config for the other variant", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "employers.yml")
		body := "variant: employers\ndocument: {local: {path: a.xlsx}}\nforms: {url: postgres://localhost/x}\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))

		cmd := NewRootCommand()
		cmd.SetArgs([]string{"events", "sync", "-c", path})

		assert.ErrorContains(t, cmd.Execute(), `is for "employers", not "events"`)
	})
}
