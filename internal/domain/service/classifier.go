package service

import (
	"context"
	"errors"

	"github.com/ywang1110/SentimentSense/internal/domain/entity"
)

// Lifecycle errors reported by Classify while the backend is not ready
var (
	// ErrModelLoading indicates the backend is still warming up; the
	// request may be retried by the caller once loading completes.
	ErrModelLoading = errors.New("model is loading")

	// ErrModelFailed indicates the backend entered its terminal failed
	// state; the process requires a restart to recover.
	ErrModelFailed = errors.New("model failed to load")
)

// BackendState represents the lifecycle state of the classification backend
type BackendState string

const (
	StateUninitialized BackendState = "uninitialized"
	StateLoading       BackendState = "loading"
	StateReady         BackendState = "ready"
	StateFailed        BackendState = "failed"
)

// Classification represents the raw outcome of a backend classification.
// Confidence is the backend's reported probability for the selected label,
// passed through without renormalization.
type Classification struct {
	Sentiment  entity.Sentiment `json:"sentiment"`
	Confidence float64          `json:"confidence"`
}

// Classifier defines the boundary to the classification backend.
// Implementations own the model lifecycle: initialization happens at most
// once per process and concurrent early callers share the same load.
type Classifier interface {
	// Classify maps a text to a sentiment label with a confidence score.
	// It blocks while the backend is loading and fails once the backend
	// has entered the failed state.
	Classify(ctx context.Context, text, requestID string) (*Classification, error)

	// State reports the current backend lifecycle state without
	// triggering initialization.
	State() BackendState

	// Healthcheck probes the backend. It is only meaningful once the
	// backend is ready; health reporting uses it for the full check.
	Healthcheck(ctx context.Context) error
}
