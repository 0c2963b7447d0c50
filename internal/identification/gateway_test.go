package identification

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/plantcare/internal/catalog"
	"github.com/lehigh-university-libraries/plantcare/internal/models"
	"github.com/lehigh-university-libraries/plantcare/internal/providers"
	"github.com/lehigh-university-libraries/plantcare/internal/testutil"
)

func newGateway(t *testing.T, c providers.Classifier, opts Options) *Gateway {
	t.Helper()
	return NewGateway(c, catalog.NewResolver(testutil.Catalog(t)), opts)
}

func pngImage(t *testing.T) providers.Image {
	return providers.Image{Data: testutil.PNG(t, 4, 3), MIMEType: "image/png", Filename: "leaf.png"}
}

func TestIdentify(t *testing.T) {
	fake := &testutil.Classifier{Predictions: testutil.FivePredictions()}
	g := newGateway(t, fake, Options{Model: "plant-v2"})

	ident, err := g.Identify(context.Background(), pngImage(t))
	require.NoError(t, err)

	assert.Equal(t, "sansevieria", ident.Top.Name)
	assert.Equal(t, "Snake Plant", ident.Top.CatalogName)
	assert.True(t, ident.Top.CareAvailable)
	assert.InDelta(t, 0.82, ident.Top.Confidence, 1e-9)
	assert.Equal(t, "https://www.houseplantresource.com/snake-plant", ident.Top.URL)
	assert.Len(t, ident.Predictions, 5)
	assert.Equal(t, testutil.FivePredictions(), ident.Top.Predictions)
	assert.False(t, ident.Mock)
	assert.Equal(t, "fake", ident.Provider)
	assert.Equal(t, "plant-v2", ident.Model)

	cfg := fake.LastConfig()
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, "plant-v2", cfg.Model)
	assert.Contains(t, cfg.Labels, "Peace Lily")
}

func TestIdentifyPreservesOrderAndTruncates(t *testing.T) {
	// Order is taken as returned, even when not sorted.
	fake := &testutil.Classifier{Predictions: []models.Prediction{
		{Name: "pothos", Confidence: 0.2},
		{Name: "peace lily", Confidence: 0.7},
		{Name: "monstera", Confidence: 0.1},
	}}
	g := newGateway(t, fake, Options{TopK: 2})

	ident, err := g.Identify(context.Background(), pngImage(t))
	require.NoError(t, err)
	require.Len(t, ident.Predictions, 2)
	assert.Equal(t, "pothos", ident.Predictions[0].Name)
	assert.Equal(t, "Pothos", ident.Top.CatalogName)
}

func TestIdentifyNotFound(t *testing.T) {
	fake := &testutil.Classifier{Predictions: []models.Prediction{
		{Name: "Venus flytrap", Confidence: 0.6},
		{Name: "pothos", Confidence: 0.3},
	}}
	g := newGateway(t, fake, Options{})

	ident, err := g.Identify(context.Background(), pngImage(t))
	require.Error(t, err)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Venus flytrap", notFound.Label)
	assert.True(t, errors.Is(err, catalog.ErrNotFound))
	assert.Equal(t, KindNotFound, Kind(err))

	require.NotNil(t, ident)
	assert.False(t, ident.Top.CareAvailable)
	assert.Equal(t, "Venus flytrap", ident.Top.Name)
	assert.Empty(t, ident.Top.CatalogName)
	assert.Len(t, ident.Top.Predictions, 2)
}

func TestIdentifyGatewayErrors(t *testing.T) {
	tests := []struct {
		name        string
		classifier  *testutil.Classifier
		errContains string
	}{
		{"transport", &testutil.Classifier{Err: errors.New("connection refused")}, "connection refused"},
		{"empty list", &testutil.Classifier{Predictions: []models.Prediction{}}, "no predictions"},
		{"confidence above one", &testutil.Classifier{Predictions: []models.Prediction{{Name: "pothos", Confidence: 1.5}}}, "outside [0,1]"},
		{"negative confidence", &testutil.Classifier{Predictions: []models.Prediction{{Name: "pothos", Confidence: -0.1}}}, "outside [0,1]"},
		{"nan confidence", &testutil.Classifier{Predictions: []models.Prediction{{Name: "pothos", Confidence: math.NaN()}}}, "outside [0,1]"},
		{"empty label", &testutil.Classifier{Predictions: []models.Prediction{{Name: "", Confidence: 0.5}}}, "empty label"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGateway(t, tt.classifier, Options{})
			ident, err := g.Identify(context.Background(), pngImage(t))
			assert.Nil(t, ident)

			var gatewayErr *GatewayError
			require.ErrorAs(t, err, &gatewayErr)
			assert.Equal(t, "fake", gatewayErr.Provider)
			assert.Contains(t, err.Error(), tt.errContains)
			assert.Equal(t, KindGateway, Kind(err))
		})
	}
}

func TestIdentifyDemoFallback(t *testing.T) {
	failing := &testutil.Classifier{Err: errors.New("503 service unavailable")}
	fallback := &testutil.Classifier{ProviderName: "demo", Predictions: []models.Prediction{{Name: "Pothos", Confidence: 0.8}}}
	g := newGateway(t, failing, Options{Fallback: fallback})

	ident, err := g.Identify(context.Background(), pngImage(t))
	require.NoError(t, err)
	assert.True(t, ident.Mock)
	assert.Equal(t, "demo", ident.Provider)
	assert.Equal(t, "Pothos", ident.Top.CatalogName)
}

func TestIdentifyWithoutFallbackSurfacesError(t *testing.T) {
	failing := &testutil.Classifier{Err: errors.New("503 service unavailable")}
	g := newGateway(t, failing, Options{})

	_, err := g.Identify(context.Background(), pngImage(t))
	assert.Equal(t, KindGateway, Kind(err))
}

func TestIdentifyValidatesBeforeCalling(t *testing.T) {
	fake := &testutil.Classifier{Predictions: testutil.FivePredictions()}
	g := newGateway(t, fake, Options{})

	_, err := g.Identify(context.Background(), providers.Image{Data: []byte("%PDF-1.4 not an image"), Filename: "doc.pdf"})
	assert.Equal(t, KindValidation, Kind(err))
	assert.Equal(t, 0, fake.Calls())
}

func TestIdentifyTimeout(t *testing.T) {
	fake := &testutil.Classifier{Predictions: testutil.FivePredictions(), Block: make(chan struct{})}
	defer close(fake.Block)
	g := newGateway(t, fake, Options{Timeout: 20 * time.Millisecond})

	_, err := g.Identify(context.Background(), pngImage(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, KindGateway, Kind(err))
}

func TestIdentifyCanceledContextSkipsFallback(t *testing.T) {
	fake := &testutil.Classifier{Block: make(chan struct{})}
	defer close(fake.Block)
	fallback := &testutil.Classifier{Predictions: testutil.FivePredictions()}
	g := newGateway(t, fake, Options{Fallback: fallback})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Identify(ctx, pngImage(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, fallback.Calls())
}

func TestHydrate(t *testing.T) {
	g := newGateway(t, &testutil.Classifier{}, Options{})
	predictions := testutil.FivePredictions()

	result, err := g.Hydrate(predictions, 2)
	require.NoError(t, err)
	assert.Equal(t, predictions[2].Name, result.Name)
	assert.Equal(t, "Peace Lily", result.CatalogName)
	assert.Equal(t, "Peace Lily", result.Record().Name)
	assert.Equal(t, predictions, result.Predictions)
	assert.Equal(t, "Prefers high humidity.", result.Care.TemperatureHumidity)

	// The carried list is a copy.
	result.Predictions[0].Name = "changed"
	assert.Equal(t, "sansevieria", predictions[0].Name)

	for _, i := range []int{-1, 5} {
		_, err := g.Hydrate(predictions, i)
		assert.Equal(t, KindValidation, Kind(err), "index %d", i)
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "File too large. Maximum size is 10MB.", UserMessage(&ValidationError{Message: "File too large. Maximum size is 10MB."}))
	assert.True(t, strings.HasPrefix(UserMessage(&GatewayError{Provider: "x", Err: errors.New("boom")}), "We couldn't reach"))
	assert.Equal(t, "Care data for Venus flytrap is coming soon.", UserMessage(&NotFoundError{Label: "Venus flytrap"}))
	assert.Equal(t, "Something went wrong. Please try again.", UserMessage(errors.New("boom")))
	assert.Equal(t, KindUnknown, Kind(&UnknownError{Err: errors.New("boom")}))
}
