package evaluation

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/plantcare/internal/catalog"
	"github.com/lehigh-university-libraries/plantcare/internal/identification"
	"github.com/lehigh-university-libraries/plantcare/internal/models"
	"github.com/lehigh-university-libraries/plantcare/internal/testutil"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	png := testutil.PNG(t, 2, 2)
	files := map[string][]string{
		"snake_plant": {"a.png", "b.png", "notes.txt"},
		"pothos":      {"a.png"},
		"monstera":    {"a.png"},
		"empty":       {"readme.md"},
	}
	for label, names := range files {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, label), 0755))
		for _, name := range names {
			require.NoError(t, os.WriteFile(filepath.Join(dir, label, name), png, 0644))
		}
	}
	return dir
}

func TestLoadDataset(t *testing.T) {
	dir := writeDataset(t)

	ds, err := LoadDataset(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"monstera", "pothos", "snake_plant"}, ds.Labels)
	assert.Len(t, ds.Items, 4)

	ds, err = LoadDataset(dir, 1)
	require.NoError(t, err)
	assert.Len(t, ds.Items, 3)

	_, err = LoadDataset(t.TempDir(), 0)
	assert.Error(t, err)
	_, err = LoadDataset(filepath.Join(dir, "missing"), 0)
	assert.Error(t, err)
}

func TestLabelName(t *testing.T) {
	assert.Equal(t, "snake plant", LabelName("snake_plant"))
	assert.Equal(t, "Peace Lily", LabelName("Peace_ Lily"))
}

func TestRun(t *testing.T) {
	ds, err := LoadDataset(writeDataset(t), 0)
	require.NoError(t, err)

	// every image gets the same ranking: snake plant first, pothos second
	fake := &testutil.Classifier{Predictions: []models.Prediction{
		{Name: "sansevieria", Confidence: 0.8},
		{Name: "pothos", Confidence: 0.15},
		{Name: "Venus flytrap", Confidence: 0.05},
	}}
	resolver := catalog.NewResolver(testutil.Catalog(t))
	gateway := identification.NewGateway(fake, resolver, identification.Options{})

	results := NewEvaluator(gateway, resolver).Run(context.Background(), ds, Options{Concurrency: 2})
	require.Len(t, results, 4)
	assert.Equal(t, 4, fake.Calls())

	byLabel := map[string][]Result{}
	for _, r := range results {
		assert.Empty(t, r.Error)
		byLabel[r.Expected] = append(byLabel[r.Expected], r)
	}

	snake := byLabel["snake plant"][0]
	assert.True(t, snake.Top1)
	assert.EqualValues(t, 1, snake.Rank)
	assert.Equal(t, "Snake Plant", snake.Resolved)
	assert.Equal(t, "sansevieria", snake.Predicted)

	pothos := byLabel["pothos"][0]
	assert.False(t, pothos.Top1)
	assert.True(t, pothos.TopK)
	assert.EqualValues(t, 2, pothos.Rank)

	monstera := byLabel["monstera"][0]
	assert.False(t, monstera.TopK)
	assert.EqualValues(t, 0, monstera.Rank)

	summary := Summarize(results)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 4, summary.Succeeded)
	assert.InDelta(t, 0.5, summary.Top1Accuracy, 1e-9)
	assert.InDelta(t, 0.75, summary.TopKAccuracy, 1e-9)
	assert.InDelta(t, 1.0, summary.CareCoverage, 1e-9)
	assert.Equal(t, ClassSummary{Total: 2, Top1: 2, TopK: 2, Recall: 1}, summary.PerClass["snake plant"])
	assert.Equal(t, ClassSummary{Total: 1, Top1: 0, TopK: 1, Recall: 0}, summary.PerClass["pothos"])
}

func TestRunCanceled(t *testing.T) {
	ds, err := LoadDataset(writeDataset(t), 0)
	require.NoError(t, err)
	fake := &testutil.Classifier{Predictions: testutil.FivePredictions()}
	resolver := catalog.NewResolver(testutil.Catalog(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := NewEvaluator(identification.NewGateway(fake, resolver, identification.Options{}), resolver).Run(ctx, ds, Options{})

	assert.Equal(t, 0, fake.Calls())
	summary := Summarize(results)
	assert.Equal(t, 4, summary.Failed)
	assert.Zero(t, summary.Top1Accuracy)
}

func TestSummarizeCountsFailures(t *testing.T) {
	summary := Summarize([]Result{
		{Expected: "pothos", Top1: true, TopK: true, CareAvailable: true, Confidence: 0.9, Mock: true},
		{Expected: "pothos", Error: "classifier fake failed"},
	})
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Mocked)
	assert.InDelta(t, 1.0, summary.Top1Accuracy, 1e-9)
	assert.InDelta(t, 0.9, summary.MeanConfidence, 1e-9)

	var buf bytes.Buffer
	summary.Print(&buf)
	assert.Contains(t, buf.String(), "Top-1 Accuracy:     100.00%")
	assert.Contains(t, buf.String(), "pothos  100.00% (1/1)")
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	results := []Result{
		{Path: "a.png", Expected: "pothos", Predicted: "golden pothos", Resolved: "Pothos", Confidence: 0.7, Rank: 1, Top1: true, TopK: true, CareAvailable: true, DurationMS: 12},
		{Path: "b.png", Expected: "monstera", Error: "timeout"},
	}
	report := Report{
		Config:  RunConfig{Provider: "fake", DatasetPath: "data", Concurrency: 2, Timestamp: "2024-01-01_00-00-00"},
		Summary: Summarize(results),
	}

	require.NoError(t, Save(dir, report, results))

	loaded, err := LoadResults(dir)
	require.NoError(t, err)
	assert.Equal(t, results, loaded)

	loadedReport, err := LoadReport(dir)
	require.NoError(t, err)
	assert.Equal(t, report, *loadedReport)

	_, err = LoadResults(filepath.Join(dir, "missing.parquet"))
	assert.Error(t, err)
}
