package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ywang1110/SentimentSense/internal/domain/entity"
	"github.com/ywang1110/SentimentSense/internal/domain/service"
)

// labelMapping normalizes the model's native labels to the service label
// set. Three-class models emit LABEL_0..LABEL_2, two-class models emit
// POSITIVE/NEGATIVE, some emit lowercase.
var labelMapping = map[string]entity.Sentiment{
	"LABEL_0":  entity.SentimentNegative,
	"LABEL_1":  entity.SentimentNeutral,
	"LABEL_2":  entity.SentimentPositive,
	"NEGATIVE": entity.SentimentNegative,
	"NEUTRAL":  entity.SentimentNeutral,
	"POSITIVE": entity.SentimentPositive,
	"negative": entity.SentimentNegative,
	"neutral":  entity.SentimentNeutral,
	"positive": entity.SentimentPositive,
}

// SentimentClassifier adapts MLClient to the Classifier interface and owns
// the backend lifecycle. Loading runs at most once per process: the first
// caller of Load drives the transition and concurrent callers share it.
// The failed state is terminal; recovery is the orchestrator's restart.
type SentimentClassifier struct {
	client       *MLClient
	log          *zap.Logger
	warmupText   string
	loadTimeout  time.Duration
	pollInterval time.Duration
	onState      func(service.BackendState)

	mu      sync.Mutex
	state   service.BackendState
	done    chan struct{}
	loadErr error
}

// Option configures a SentimentClassifier
type Option func(*SentimentClassifier)

// WithStateHook registers a callback invoked on every lifecycle transition
func WithStateHook(hook func(service.BackendState)) Option {
	return func(c *SentimentClassifier) { c.onState = hook }
}

// WithPollInterval overrides the readiness polling interval during loading
func WithPollInterval(d time.Duration) Option {
	return func(c *SentimentClassifier) { c.pollInterval = d }
}

// NewSentimentClassifier creates a SentimentClassifier in the
// uninitialized state
func NewSentimentClassifier(mlClient *MLClient, log *zap.Logger, warmupText string, loadTimeout time.Duration, opts ...Option) *SentimentClassifier {
	c := &SentimentClassifier{
		client:       mlClient,
		log:          log,
		warmupText:   warmupText,
		loadTimeout:  loadTimeout,
		pollInterval: 2 * time.Second,
		state:        service.StateUninitialized,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports the current lifecycle state
func (c *SentimentClassifier) State() service.BackendState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Load drives the backend to the ready state: it waits for the inference
// service to report readiness, then runs one warmup classification. Only
// the first caller performs the work; later callers wait for the shared
// outcome. Load is typically started in the background at process startup,
// but a stray early request triggers it too.
func (c *SentimentClassifier) Load(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case service.StateReady:
		c.mu.Unlock()
		return nil
	case service.StateFailed:
		err := c.loadErr
		c.mu.Unlock()
		return err
	case service.StateLoading:
		done := c.done
		c.mu.Unlock()
		select {
		case <-done:
			return c.loadResult()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.setStateLocked(service.StateLoading)
	done := c.done
	c.mu.Unlock()

	err := c.load(ctx)

	c.mu.Lock()
	if err != nil {
		c.loadErr = fmt.Errorf("%w: %v", service.ErrModelFailed, err)
		c.setStateLocked(service.StateFailed)
	} else {
		c.setStateLocked(service.StateReady)
	}
	c.mu.Unlock()
	close(done)

	return c.loadResult()
}

func (c *SentimentClassifier) load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()

	c.log.Info("Waiting for inference service to load model")
	start := time.Now()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		if err := c.client.Ready(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("inference service did not become ready: %w", ctx.Err())
		case <-ticker.C:
		}
	}

	// warmup inference so the first real request does not pay cold-start cost
	if _, err := c.client.Classify(ctx, c.warmupText, "warmup"); err != nil {
		return fmt.Errorf("warmup classification failed: %w", err)
	}

	c.log.Info("Model loaded",
		zap.Duration("load_time", time.Since(start)),
	)
	return nil
}

func (c *SentimentClassifier) loadResult() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == service.StateFailed {
		return c.loadErr
	}
	return nil
}

func (c *SentimentClassifier) setStateLocked(s service.BackendState) {
	c.state = s
	if c.onState != nil {
		c.onState(s)
	}
}

// Classify classifies a single text. While the backend is loading the call
// fails fast with ErrModelLoading rather than queueing behind the warmup;
// the first call in the uninitialized state kicks off loading.
func (c *SentimentClassifier) Classify(ctx context.Context, text, requestID string) (*service.Classification, error) {
	switch c.State() {
	case service.StateUninitialized:
		go func() {
			_ = c.Load(context.Background())
		}()
		return nil, service.ErrModelLoading
	case service.StateLoading:
		return nil, service.ErrModelLoading
	case service.StateFailed:
		return nil, c.loadResult()
	}

	resp, err := c.client.Classify(ctx, text, requestID)
	if err != nil {
		return nil, err
	}

	sentiment, ok := labelMapping[resp.Result.Label]
	if !ok {
		return nil, fmt.Errorf("inference service returned unknown label %q", resp.Result.Label)
	}

	return &service.Classification{
		Sentiment:  sentiment,
		Confidence: resp.Result.Score,
	}, nil
}

// Healthcheck probes the inference service
func (c *SentimentClassifier) Healthcheck(ctx context.Context) error {
	health, err := c.client.Health(ctx)
	if err != nil {
		return err
	}
	if !health.ModelLoaded {
		return fmt.Errorf("inference service reports model not loaded")
	}
	return nil
}
