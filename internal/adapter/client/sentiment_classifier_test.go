package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ywang1110/SentimentSense/internal/domain/entity"
	"github.com/ywang1110/SentimentSense/internal/domain/service"
)

// fakeBackend simulates the inference sidecar with a switchable ready flag
type fakeBackend struct {
	ready         atomic.Bool
	classifyCalls atomic.Int64
	label         string
	score         float64
}

func (f *fakeBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ready":
			if f.ready.Load() {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusServiceUnavailable)
			}
		case "/health":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(HealthResponse{
				Status:      "healthy",
				ModelLoaded: f.ready.Load(),
			})
		case "/classify":
			f.classifyCalls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(ClassifyResponse{
				Success: true,
				Result:  ClassificationResult{Label: f.label, Score: f.score},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestClassifier(t *testing.T, url string, opts ...Option) *SentimentClassifier {
	t.Helper()
	opts = append([]Option{WithPollInterval(5 * time.Millisecond)}, opts...)
	return NewSentimentClassifier(
		NewMLClient(url, time.Second),
		zap.NewNop(),
		"This is a test.",
		2*time.Second,
		opts...,
	)
}

func TestSentimentClassifier_Load(t *testing.T) {
	t.Run("transitions to ready once the backend is up", func(t *testing.T) {
		backend := &fakeBackend{label: "LABEL_2", score: 0.95}
		backend.ready.Store(true)
		server := backend.server(t)
		defer server.Close()

		var states []service.BackendState
		var mu sync.Mutex
		c := newTestClassifier(t, server.URL, WithStateHook(func(s service.BackendState) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		}))

		assert.Equal(t, service.StateUninitialized, c.State())
		err := c.Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, service.StateReady, c.State())
		assert.Equal(t, []service.BackendState{service.StateLoading, service.StateReady}, states)
		// warmup classification ran exactly once
		assert.Equal(t, int64(1), backend.classifyCalls.Load())
	})

	t.Run("concurrent loads share a single transition", func(t *testing.T) {
		backend := &fakeBackend{label: "LABEL_2", score: 0.95}
		backend.ready.Store(true)
		server := backend.server(t)
		defer server.Close()

		c := newTestClassifier(t, server.URL)

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = c.Load(context.Background())
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}
		assert.Equal(t, int64(1), backend.classifyCalls.Load())
	})

	t.Run("fails terminally when the backend never becomes ready", func(t *testing.T) {
		backend := &fakeBackend{label: "LABEL_2", score: 0.95}
		server := backend.server(t)
		defer server.Close()

		c := NewSentimentClassifier(
			NewMLClient(server.URL, time.Second),
			zap.NewNop(),
			"This is a test.",
			50*time.Millisecond,
			WithPollInterval(5*time.Millisecond),
		)

		err := c.Load(context.Background())

		assert.ErrorIs(t, err, service.ErrModelFailed)
		assert.Equal(t, service.StateFailed, c.State())

		// failed is terminal: a second load reports the same error
		err = c.Load(context.Background())
		assert.ErrorIs(t, err, service.ErrModelFailed)
	})
}

func TestSentimentClassifier_Classify(t *testing.T) {
	readyClassifier := func(t *testing.T, backend *fakeBackend) (*SentimentClassifier, func()) {
		backend.ready.Store(true)
		server := backend.server(t)
		c := newTestClassifier(t, server.URL)
		require.NoError(t, c.Load(context.Background()))
		backend.classifyCalls.Store(0)
		return c, server.Close
	}

	t.Run("maps three-class labels", func(t *testing.T) {
		for label, want := range map[string]entity.Sentiment{
			"LABEL_0": entity.SentimentNegative,
			"LABEL_1": entity.SentimentNeutral,
			"LABEL_2": entity.SentimentPositive,
		} {
			backend := &fakeBackend{label: label, score: 0.9}
			c, closeServer := readyClassifier(t, backend)

			result, err := c.Classify(context.Background(), "some text", "req-1")

			require.NoError(t, err)
			assert.Equal(t, want, result.Sentiment)
			assert.Equal(t, 0.9, result.Confidence)
			closeServer()
		}
	})

	t.Run("maps lowercase two-class labels", func(t *testing.T) {
		backend := &fakeBackend{label: "positive", score: 0.88}
		c, closeServer := readyClassifier(t, backend)
		defer closeServer()

		result, err := c.Classify(context.Background(), "nice", "req-2")

		require.NoError(t, err)
		assert.Equal(t, entity.SentimentPositive, result.Sentiment)
	})

	t.Run("rejects unknown labels", func(t *testing.T) {
		backend := &fakeBackend{label: "LABEL_9", score: 0.5}
		c, closeServer := readyClassifier(t, backend)
		defer closeServer()

		_, err := c.Classify(context.Background(), "text", "req-3")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown label")
	})

	t.Run("fails fast while loading", func(t *testing.T) {
		backend := &fakeBackend{label: "LABEL_2", score: 0.9}
		server := backend.server(t)
		defer server.Close()

		c := newTestClassifier(t, server.URL)

		_, err := c.Classify(context.Background(), "text", "req-4")

		assert.ErrorIs(t, err, service.ErrModelLoading)
		assert.Equal(t, int64(0), backend.classifyCalls.Load())
	})

	t.Run("reports terminal failure", func(t *testing.T) {
		backend := &fakeBackend{label: "LABEL_2", score: 0.9}
		server := backend.server(t)
		defer server.Close()

		c := NewSentimentClassifier(
			NewMLClient(server.URL, time.Second),
			zap.NewNop(),
			"This is a test.",
			20*time.Millisecond,
			WithPollInterval(5*time.Millisecond),
		)
		_ = c.Load(context.Background())
		require.Equal(t, service.StateFailed, c.State())

		_, err := c.Classify(context.Background(), "text", "req-5")

		assert.ErrorIs(t, err, service.ErrModelFailed)
	})
}

func TestSentimentClassifier_Healthcheck(t *testing.T) {
	t.Run("healthy backend", func(t *testing.T) {
		backend := &fakeBackend{label: "LABEL_2", score: 0.9}
		backend.ready.Store(true)
		server := backend.server(t)
		defer server.Close()

		c := newTestClassifier(t, server.URL)

		assert.NoError(t, c.Healthcheck(context.Background()))
	})

	t.Run("backend without model", func(t *testing.T) {
		backend := &fakeBackend{label: "LABEL_2", score: 0.9}
		server := backend.server(t)
		defer server.Close()

		c := newTestClassifier(t, server.URL)

		assert.Error(t, c.Healthcheck(context.Background()))
	})
}
