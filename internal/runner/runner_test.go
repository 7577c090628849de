package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"lefseformat/internal/config"
	"lefseformat/internal/output"
)

const sampleInput = "class\tB\tA\tA\n" +
	"subject\ts1\ts2\ts3\n" +
	"k|a\t1\t2\t3\n" +
	"k|b\t3\t2\t1\n"

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Format.Subject = 2
	return cfg
}

func readDocument(t *testing.T, path string) *output.Document {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := output.ReadJSON(f)
	require.NoError(t, err)
	return doc
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	job := Job{
		Input:  writeInput(t, dir, "in.txt", sampleInput),
		Output: filepath.Join(dir, "out.json"),
	}

	core, logs := observer.New(zapcore.InfoLevel)
	r := New(testConfig(), zap.New(core))

	res, err := r.Run(context.Background(), job)
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 3, res.Samples)
	assert.Equal(t, 3, res.Features)
	assert.Zero(t, res.Dropped)

	doc := readDocument(t, job.Output)
	assert.Equal(t, []string{"A", "A", "B"}, doc.Labels["class"])
	assert.Equal(t, []string{"s2", "s3", "s1"}, doc.Labels["subject"])
	assert.Equal(t, []float64{2, 3, 1}, doc.Features["k.a"])
	assert.Equal(t, []float64{4, 4, 4}, doc.Features["k"])
	assert.Equal(t, [2]int{0, 2}, doc.ClassSlices["A"])
	assert.Equal(t, -1.0, doc.Norm)

	entries := logs.FilterMessage("job complete").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "runner", entries[0].LoggerName)
	assert.Equal(t, res.RunID, entries[0].ContextMap()["run_id"])
}

func TestRun_SideTable(t *testing.T) {
	dir := t.TempDir()
	job := Job{
		Input:  writeInput(t, dir, "in.txt", sampleInput),
		Output: filepath.Join(dir, "out.json"),
		Table:  filepath.Join(dir, "out.tsv"),
	}

	_, err := New(testConfig(), nil).Run(context.Background(), job)
	require.NoError(t, err)

	data, err := os.ReadFile(job.Table)
	require.NoError(t, err)
	assert.Contains(t, string(data), "class\tA\tA\tB\n")
}

func TestRun_FeaturesOnColumns(t *testing.T) {
	dir := t.TempDir()
	transposed := "class\tsubject\tk|a\tk|b\n" +
		"B\ts1\t1\t3\n" +
		"A\ts2\t2\t2\n" +
		"A\ts3\t3\t1\n"
	cfg := testConfig()
	cfg.Format.FeaturesOn = "columns"

	job := Job{
		Input:  writeInput(t, dir, "in.txt", transposed),
		Output: filepath.Join(dir, "out.json"),
	}
	_, err := New(cfg, nil).Run(context.Background(), job)
	require.NoError(t, err)

	doc := readDocument(t, job.Output)
	assert.Equal(t, []float64{2, 1, 3}, doc.Features["k.b"])
}

func TestRun_MissingPolicy(t *testing.T) {
	dir := t.TempDir()
	withGap := sampleInput + "k|c\t1\t\t1\n"
	cfg := testConfig()
	cfg.Format.MissingPolicy = "f"

	job := Job{
		Input:  writeInput(t, dir, "in.txt", withGap),
		Output: filepath.Join(dir, "out.json"),
	}
	res, err := New(cfg, nil).Run(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dropped)

	doc := readDocument(t, job.Output)
	assert.NotContains(t, doc.Features, "k.c")
}

func TestRun_BIOM(t *testing.T) {
	dir := t.TempDir()
	biom := `{"matrix_type": "dense", "shape": [1, 2], "data": [[4, 6]],
	  "rows": [{"id": "OTU1", "metadata": {"taxonomy": ["k__Bacteria", "p__Firmicutes"]}}],
	  "columns": [
	    {"id": "S1", "metadata": {"oxygen": "low", "site": "gut", "age": 30}},
	    {"id": "S2", "metadata": {"oxygen": "high", "site": "gut", "age": 41}}
	  ]}`
	cfg := config.DefaultConfig()
	cfg.Format.BIOMClass = "oxygen"
	cfg.Format.BIOMSubclass = "site"

	job := Job{
		Input:  writeInput(t, dir, "in.biom", biom),
		Output: filepath.Join(dir, "out.json"),
	}
	res, err := New(cfg, nil).Run(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Samples)
	assert.Equal(t, 2, res.Features)

	doc := readDocument(t, job.Output)
	assert.Equal(t, []string{"high", "low"}, doc.Labels["class"])
	assert.Equal(t, []string{"S2", "S1"}, doc.Labels["subject"])
	assert.Equal(t, []float64{6, 4}, doc.Features["k__Bacteria"])
	assert.NotContains(t, doc.Features, "age")
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	job := Job{
		Input:  writeInput(t, dir, "in.txt", sampleInput),
		Output: filepath.Join(dir, "out.json"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(), nil).Run(ctx, job)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, job.Output)
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Output.Format = "pickle"

	_, err := New(cfg, nil).Run(context.Background(), Job{Input: "unused", Output: "unused"})
	assert.Error(t, err)
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := New(testConfig(), nil).Run(context.Background(), Job{
		Input:  filepath.Join(dir, "absent.txt"),
		Output: filepath.Join(dir, "out.json"),
	})
	assert.Error(t, err)
}

func TestRunBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	var jobs []Job
	for _, name := range []string{"a", "b", "c"} {
		jobs = append(jobs, Job{
			Input:  writeInput(t, dir, name+".txt", sampleInput),
			Output: filepath.Join(dir, name+".json"),
		})
	}

	cfg := testConfig()
	cfg.Batch.Concurrency = 2

	results, err := New(cfg, nil).RunBatch(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, jobs[i], res.Job)
		assert.FileExists(t, jobs[i].Output)
	}
}

func TestRunBatch_Failure(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	bad := filepath.Join(dir, "absent.txt")
	jobs := []Job{
		{Input: writeInput(t, dir, "a.txt", sampleInput), Output: filepath.Join(dir, "a.json")},
		{Input: bad, Output: filepath.Join(dir, "b.json")},
	}

	_, err := New(testConfig(), nil).RunBatch(context.Background(), jobs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}

func TestRunBatch_Validation(t *testing.T) {
	r := New(testConfig(), nil)

	_, err := r.RunBatch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoJobs)

	_, err = r.RunBatch(context.Background(), []Job{
		{Input: "a.txt", Output: "same.json"},
		{Input: "b.txt", Output: "same.json"},
	})
	assert.ErrorContains(t, err, "same.json")
}
