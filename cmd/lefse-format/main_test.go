package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lefseformat/internal/config"
	"lefseformat/internal/output"
	"lefseformat/internal/runner"
)

const sampleInput = "class\tB\tA\tA\n" +
	"subject\ts1\ts2\ts3\n" +
	"k|a\t1\t2\t3\n" +
	"k|b\t3\t2\t1\n"

// newTestCommand returns a command carrying the root flag set, so Changed
// reflects only what the test parses.
func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	flags = formatFlags{}
	verbose = false
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	cmd.Flags().AddFlagSet(rootCmd.Flags())
	require.NoError(t, cmd.ParseFlags(args))
	t.Cleanup(func() {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			f.Changed = false
			_ = f.Value.Set(f.DefValue)
		})
	})
	return cmd
}

func TestApplyFlagOverrides(t *testing.T) {
	cmd := newTestCommand(t, "-c", "2", "-u", "3", "-o", "1000000", "--output_format", "sqlite")

	c := config.DefaultConfig()
	c.Format.MissingPolicy = "s" // from a file; -m not given
	applyFlagOverrides(cmd, c)

	assert.Equal(t, 2, c.Format.Class)
	assert.Equal(t, 3, c.Format.Subject)
	assert.Equal(t, 1000000.0, c.Format.NormValue)
	assert.Equal(t, "sqlite", c.Output.Format)
	assert.Equal(t, "s", c.Format.MissingPolicy)
	assert.Equal(t, 0, c.Format.Subclass)
	assert.Equal(t, "info", c.Logging.Level)
}

func TestApplyFlagOverrides_Verbose(t *testing.T) {
	cmd := newTestCommand(t, "-v")

	c := config.DefaultConfig()
	applyFlagOverrides(cmd, c)
	assert.Equal(t, "debug", c.Logging.Level)
}

func TestParseJobs(t *testing.T) {
	jobs, err := parseJobs([]string{"a.txt:a.json", "b.txt:b.json:b.tsv"})
	require.NoError(t, err)
	assert.Equal(t, []runner.Job{
		{Input: "a.txt", Output: "a.json"},
		{Input: "b.txt", Output: "b.json", Table: "b.tsv"},
	}, jobs)

	for _, bad := range []string{"a.txt", ":a.json", "a.txt:", "a:b:c:d"} {
		_, err := parseJobs([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestRunFormatAndInspect(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(in, []byte(sampleInput), 0644))

	cfg = config.DefaultConfig()
	cfg.Format.Subject = 2
	logger = zap.NewNop()
	quiet = false

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&buf)
	require.NoError(t, runFormat(cmd, []string{in, out}))
	assert.Contains(t, buf.String(), "samples: 3")
	assert.Contains(t, buf.String(), "features: 3")

	buf.Reset()
	require.NoError(t, runInspect(cmd, []string{out}))
	summary := buf.String()
	assert.Contains(t, summary, "norm: none")
	assert.Contains(t, summary, "A: 2 samples, subclasses: A_subcl")
	assert.Less(t, strings.Index(summary, "A:"), strings.Index(summary, "B:"))
}

func TestRenderDocument_Norm(t *testing.T) {
	doc := &output.Document{
		Norm:         100,
		Labels:       map[string][]string{"class": {"A"}},
		FeatureOrder: []string{"k"},
		ClassSlices:  map[string][2]int{"A": {0, 1}},
	}
	assert.Contains(t, renderDocument("x.json", doc), "norm: 100")
}
