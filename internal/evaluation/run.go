package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/plantcare/internal/catalog"
	"github.com/lehigh-university-libraries/plantcare/internal/identification"
	"github.com/lehigh-university-libraries/plantcare/internal/models"
	"github.com/lehigh-university-libraries/plantcare/internal/providers"
)

// DefaultConcurrency bounds parallel classifier calls when Options leaves it unset
const DefaultConcurrency = 4

// Identifier is the part of the gateway an evaluation needs
type Identifier interface {
	Identify(ctx context.Context, img providers.Image) (*models.Identification, error)
}

// Result is the outcome for one image
type Result struct {
	Path          string  `parquet:"path" yaml:"path"`
	Expected      string  `parquet:"expected" yaml:"expected"`
	Predicted     string  `parquet:"predicted" yaml:"predicted"`
	Resolved      string  `parquet:"resolved" yaml:"resolved"`
	Confidence    float64 `parquet:"confidence" yaml:"confidence"`
	Rank          int64   `parquet:"rank" yaml:"rank"`
	Top1          bool    `parquet:"top1" yaml:"top1"`
	TopK          bool    `parquet:"topk" yaml:"topk"`
	CareAvailable bool    `parquet:"care_available" yaml:"care_available"`
	Mock          bool    `parquet:"mock" yaml:"mock"`
	DurationMS    int64   `parquet:"duration_ms" yaml:"duration_ms"`
	Error         string  `parquet:"error" yaml:"error,omitempty"`
}

// Options configures Run
type Options struct {
	Concurrency int
}

// Evaluator scores an identifier against labelled images
type Evaluator struct {
	identifier Identifier
	resolver   *catalog.Resolver
}

func NewEvaluator(identifier Identifier, resolver *catalog.Resolver) *Evaluator {
	return &Evaluator{identifier: identifier, resolver: resolver}
}

// Run classifies every item. Results are returned in dataset order; a
// cancelled context marks the remaining items as failed.
func (e *Evaluator) Run(ctx context.Context, ds *Dataset, opts Options) []Result {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	slog.Info("Processing items", "items", len(ds.Items), "concurrency", concurrency)

	results := make([]Result, len(ds.Items))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i, item := range ds.Items {
		wg.Add(1)
		go func(idx int, item Item) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Debug("Processing item", "path", item.Path, "progress", fmt.Sprintf("%d/%d", idx+1, len(ds.Items)))
			results[idx] = e.processItem(ctx, item)
		}(i, item)
	}
	wg.Wait()

	return results
}

func (e *Evaluator) processItem(ctx context.Context, item Item) Result {
	result := Result{Path: item.Path, Expected: LabelName(item.Label)}
	if err := ctx.Err(); err != nil {
		result.Error = err.Error()
		return result
	}

	data, err := os.ReadFile(item.Path)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read image: %v", err)
		return result
	}

	start := time.Now()
	ident, err := e.identifier.Identify(ctx, providers.Image{
		Data:     data,
		MIMEType: mime.TypeByExtension(filepath.Ext(item.Path)),
		Filename: filepath.Base(item.Path),
	})
	result.DurationMS = time.Since(start).Milliseconds()

	var notFound *identification.NotFoundError
	if err != nil && !errors.As(err, &notFound) {
		result.Error = err.Error()
		return result
	}

	result.Predicted = ident.Top.Name
	result.Confidence = ident.Top.Confidence
	result.CareAvailable = ident.Top.CareAvailable
	result.Mock = ident.Mock
	if ident.Top.CareAvailable {
		result.Resolved = ident.Top.CatalogName
	}

	expected := e.key(result.Expected)
	for i, p := range ident.Predictions {
		if e.key(p.Name) == expected {
			result.Rank = int64(i + 1)
			break
		}
	}
	result.Top1 = result.Rank == 1
	result.TopK = result.Rank > 0
	return result
}

// key maps a label to the canonical catalog name when it resolves, so that
// synonyms count as matches
func (e *Evaluator) key(label string) string {
	if e.resolver != nil {
		if rec, err := e.resolver.Resolve(label); err == nil {
			return "catalog:" + rec.Name
		}
	}
	return catalog.Normalize(label)
}
