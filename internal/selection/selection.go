// Package selection drives one user's pass through identification: upload,
// loading, the top match, the alternates list and back again.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lehigh-university-libraries/plantcare/internal/identification"
	"github.com/lehigh-university-libraries/plantcare/internal/models"
	"github.com/lehigh-university-libraries/plantcare/internal/providers"
)

var (
	// ErrInvalidTransition is returned when an action is not allowed in the
	// current state. The state is left unchanged.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrBusy is returned by Submit while a request is already in flight
	ErrBusy = errors.New("identification already in progress")
	// ErrStale is returned when a request completes after the flow was reset
	// or moved on. Its outcome is discarded.
	ErrStale = errors.New("identification result discarded")
)

// Kind names a state of the flow
type Kind string

const (
	Idle           Kind = "idle"
	Loading        Kind = "loading"
	Result         Kind = "result"
	PredictionList Kind = "prediction_list"
	Error          Kind = "error"
)

// State is a point-in-time view of a Flow
type State struct {
	Kind                    Kind                        `json:"state"`
	Plant                   *models.HydratedPlantResult `json:"plant,omitempty"`
	Predictions             []models.Prediction         `json:"predictions,omitempty"`
	Err                     error                       `json:"-"`
	ErrorKind               string                      `json:"error_kind,omitempty"`
	Message                 string                      `json:"message,omitempty"`
	Mock                    bool                        `json:"mock,omitempty"`
	SelectedFromPredictions bool                        `json:"selected_from_predictions"`
	Generation              uint64                      `json:"generation"`
}

// Identifier is the part of the identification gateway a Flow needs
type Identifier interface {
	Identify(ctx context.Context, img providers.Image) (*models.Identification, error)
	Hydrate(predictions []models.Prediction, i int) (models.HydratedPlantResult, error)
}

// Flow is safe for concurrent use. The identifier call runs outside the lock.
type Flow struct {
	identifier Identifier

	mu       sync.Mutex
	state    State
	previous *models.HydratedPlantResult
	cancel   context.CancelFunc
}

// New returns a flow in the Idle state
func New(identifier Identifier) *Flow {
	return &Flow{
		identifier: identifier,
		state:      State{Kind: Idle},
	}
}

// Submit moves the flow to Loading and blocks on identification. Failures
// of the identification itself are recorded in the returned state; the
// error is only set when the submit was refused or its result discarded.
func (f *Flow) Submit(ctx context.Context, img providers.Image) (State, error) {
	ctx, gen, err := f.begin(ctx)
	if err != nil {
		return f.Snapshot(), err
	}

	ident, identErr := f.identifier.Identify(ctx, img)
	return f.finish(gen, ident, identErr)
}

// Start is Submit without blocking. The channel receives Submit's error
// (nil on success) and is then closed.
func (f *Flow) Start(ctx context.Context, img providers.Image) <-chan error {
	done := make(chan error, 1)
	ctx, gen, err := f.begin(ctx)
	if err != nil {
		done <- err
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ident, identErr := f.identifier.Identify(ctx, img)
		_, err := f.finish(gen, ident, identErr)
		done <- err
	}()
	return done
}

func (f *Flow) begin(ctx context.Context) (context.Context, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state.Kind {
	case Loading:
		return nil, 0, ErrBusy
	case Error:
		return nil, 0, fmt.Errorf("%w: submit from %s", ErrInvalidTransition, f.state.Kind)
	}

	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.previous = nil
	f.state = State{Kind: Loading, Generation: f.state.Generation + 1}
	return ctx, f.state.Generation, nil
}

func (f *Flow) finish(gen uint64, ident *models.Identification, err error) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Generation != gen || f.state.Kind != Loading {
		slog.Debug("Discarding stale identification", "generation", gen, "current", f.state.Generation)
		return f.snapshotLocked(), ErrStale
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}

	var notFound *identification.NotFoundError
	switch {
	case err == nil:
		f.showResult(ident)
	case errors.As(err, &notFound) && ident != nil:
		f.showResult(ident)
		f.state.Message = identification.UserMessage(err)
	default:
		f.state = State{
			Kind:       Error,
			Err:        err,
			ErrorKind:  identification.Kind(err),
			Message:    identification.UserMessage(err),
			Generation: gen,
		}
	}
	return f.snapshotLocked(), nil
}

func (f *Flow) showResult(ident *models.Identification) {
	top := ident.Top
	f.state = State{
		Kind:        Result,
		Plant:       &top,
		Predictions: ident.Predictions,
		Mock:        ident.Mock,
		Generation:  f.state.Generation,
	}
}

// TryAgain shows the alternates list for the current result
func (f *Flow) TryAgain() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Kind != Result {
		return f.snapshotLocked(), fmt.Errorf("%w: try again from %s", ErrInvalidTransition, f.state.Kind)
	}
	f.previous = f.state.Plant
	f.state.Kind = PredictionList
	f.state.Plant = nil
	f.state.Message = ""
	return f.snapshotLocked(), nil
}

// Select shows predictions[i] from the alternates list
func (f *Flow) Select(i int) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Kind != PredictionList {
		return f.snapshotLocked(), fmt.Errorf("%w: select from %s", ErrInvalidTransition, f.state.Kind)
	}

	result, err := f.identifier.Hydrate(f.state.Predictions, i)
	var notFound *identification.NotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return f.snapshotLocked(), err
	}

	result.SelectedFromPredictions = true
	f.state.Kind = Result
	f.state.Plant = &result
	f.state.SelectedFromPredictions = true
	f.state.Message = identification.UserMessage(err)
	return f.snapshotLocked(), nil
}

// Back leaves the alternates list for the plant shown before it, or returns
// from a picked alternate to the list.
func (f *Flow) Back() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case f.state.Kind == PredictionList && f.previous != nil:
		f.state.Kind = Result
		f.state.Plant = f.previous
		f.state.SelectedFromPredictions = f.previous.SelectedFromPredictions
		f.state.Message = ""
		if !f.previous.CareAvailable {
			f.state.Message = identification.UserMessage(&identification.NotFoundError{Label: f.previous.Name})
		}
		f.previous = nil
	case f.state.Kind == Result && f.state.SelectedFromPredictions:
		f.previous = f.state.Plant
		f.state.Kind = PredictionList
		f.state.Plant = nil
		f.state.Message = ""
	default:
		return f.snapshotLocked(), fmt.Errorf("%w: back from %s", ErrInvalidTransition, f.state.Kind)
	}
	return f.snapshotLocked(), nil
}

// Retry acknowledges an error and returns to Idle
func (f *Flow) Retry() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Kind != Error {
		return f.snapshotLocked(), fmt.Errorf("%w: retry from %s", ErrInvalidTransition, f.state.Kind)
	}
	f.state = State{Kind: Idle, Generation: f.state.Generation}
	return f.snapshotLocked(), nil
}

// Reset returns to Idle from any state, dropping all data and cancelling an
// in-flight request. A request still in flight is discarded when it lands.
func (f *Flow) Reset() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.previous = nil
	f.state = State{Kind: Idle, Generation: f.state.Generation + 1}
	return f.snapshotLocked()
}

// Snapshot returns a copy of the current state
func (f *Flow) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Flow) snapshotLocked() State {
	s := f.state
	if s.Plant != nil {
		plant := *s.Plant
		plant.Predictions = append([]models.Prediction(nil), plant.Predictions...)
		s.Plant = &plant
	}
	if s.Predictions != nil {
		s.Predictions = append([]models.Prediction(nil), s.Predictions...)
	}
	return s
}
