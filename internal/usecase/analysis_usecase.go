package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ywang1110/SentimentSense/internal/domain/entity"
	"github.com/ywang1110/SentimentSense/internal/domain/service"
	"github.com/ywang1110/SentimentSense/internal/infrastructure/cache"
	"github.com/ywang1110/SentimentSense/internal/infrastructure/config"
	"github.com/ywang1110/SentimentSense/internal/infrastructure/metrics"
	"github.com/ywang1110/SentimentSense/internal/infrastructure/pool"
)

// Error definitions for the analysis usecase. Validation errors are
// client-caused and rejected before any backend call.
var (
	ErrEmptyText          = errors.New("text must not be empty")
	ErrTextTooLong        = errors.New("text exceeds maximum length")
	ErrEmptyBatch         = errors.New("texts must not be empty")
	ErrBatchTooLarge      = errors.New("batch exceeds size limit")
	ErrBackendUnavailable = errors.New("classification backend unavailable")
)

// AnalysisOutput is the result document for a single analysis
type AnalysisOutput struct {
	Text           string           `json:"text"`
	Sentiment      entity.Sentiment `json:"sentiment"`
	Confidence     float64          `json:"confidence"`
	ProcessingTime float64          `json:"processing_time"`
}

// BatchAnalysisOutput is the result document for a batch analysis.
// Results preserve input order: Results[i] corresponds to texts[i].
type BatchAnalysisOutput struct {
	Results             []*AnalysisOutput `json:"results"`
	TotalCount          int               `json:"total_count"`
	TotalProcessingTime float64           `json:"total_processing_time"`
}

// AnalysisUsecase defines the sentiment analysis business logic
type AnalysisUsecase interface {
	Analyze(ctx context.Context, text, requestID string) (*AnalysisOutput, error)
	AnalyzeBatch(ctx context.Context, texts []string, requestID string) (*BatchAnalysisOutput, error)
}

type analysisUsecase struct {
	classifier service.Classifier
	cfg        *config.ModelConfig
	pool       *pool.Pool
	results    *cache.ResultCache
	collector  *metrics.Collector
	log        *zap.Logger
}

// NewAnalysisUsecase creates a new analysis usecase. results and collector
// may be nil; caching and metrics are then skipped.
func NewAnalysisUsecase(
	classifier service.Classifier,
	cfg *config.ModelConfig,
	workers *pool.Pool,
	results *cache.ResultCache,
	collector *metrics.Collector,
	log *zap.Logger,
) AnalysisUsecase {
	return &analysisUsecase{
		classifier: classifier,
		cfg:        cfg,
		pool:       workers,
		results:    results,
		collector:  collector,
		log:        log,
	}
}

func (u *analysisUsecase) Analyze(ctx context.Context, text, requestID string) (*AnalysisOutput, error) {
	trimmed, err := u.validateText(text)
	if err != nil {
		return nil, err
	}
	return u.analyze(ctx, trimmed, requestID, "/analyze")
}

func (u *analysisUsecase) AnalyzeBatch(ctx context.Context, texts []string, requestID string) (*BatchAnalysisOutput, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(texts) > u.cfg.BatchSizeLimit {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(texts), u.cfg.BatchSizeLimit)
	}

	// fail fast: any invalid element rejects the whole batch before the
	// backend sees anything
	trimmed := make([]string, len(texts))
	for i, text := range texts {
		t, err := u.validateText(text)
		if err != nil {
			return nil, fmt.Errorf("texts[%d]: %w", i, err)
		}
		trimmed[i] = t
	}

	start := time.Now()
	results := make([]*AnalysisOutput, len(trimmed))
	for i, text := range trimmed {
		result, err := u.analyze(ctx, text, requestID, "/analyze/batch")
		if err != nil {
			return nil, err
		}
		results[i] = result
	}

	return &BatchAnalysisOutput{
		Results:             results,
		TotalCount:          len(results),
		TotalProcessingTime: time.Since(start).Seconds(),
	}, nil
}

// analyze runs one classification for already-validated text
func (u *analysisUsecase) analyze(ctx context.Context, text, requestID, endpoint string) (*AnalysisOutput, error) {
	if u.cfg.EnableCache {
		if cached, ok := u.results.Get(ctx, text); ok {
			u.logResult(requestID, endpoint, cached.Sentiment, cached.Confidence, cached.ProcessingTime, text, true)
			return toOutput(cached), nil
		}
	}

	var classification *service.Classification
	var elapsed time.Duration

	err := u.pool.Do(ctx, func() error {
		start := time.Now()
		var classifyErr error
		classification, classifyErr = u.classifier.Classify(ctx, text, requestID)
		elapsed = time.Since(start)
		return classifyErr
	})
	if err != nil {
		if u.collector != nil {
			u.collector.RecordError(errorType(err), endpoint)
		}
		u.log.Error("Classification failed",
			zap.String("request_id", requestID),
			zap.String("endpoint", endpoint),
			zap.Int("text_length", utf8.RuneCountInString(text)),
			zap.Error(err),
		)
		if errors.Is(err, service.ErrModelLoading) || errors.Is(err, service.ErrModelFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	result := entity.NewAnalysisResult(text, classification.Sentiment, classification.Confidence, elapsed.Seconds())

	if u.collector != nil {
		u.collector.RecordInference(u.cfg.Name, string(result.Sentiment), elapsed)
	}
	if u.cfg.EnableCache {
		u.results.Set(ctx, result)
	}
	u.logResult(requestID, endpoint, result.Sentiment, result.Confidence, result.ProcessingTime, text, false)

	return toOutput(result), nil
}

// validateText trims and checks the per-text constraints
func (u *analysisUsecase) validateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptyText
	}
	if length := utf8.RuneCountInString(trimmed); length > u.cfg.MaxTextLength {
		return "", fmt.Errorf("%w: %d > %d", ErrTextTooLong, length, u.cfg.MaxTextLength)
	}
	return trimmed, nil
}

// logResult emits the per-request log record log aggregation depends on
func (u *analysisUsecase) logResult(requestID, endpoint string, sentiment entity.Sentiment, confidence, processingTime float64, text string, cached bool) {
	u.log.Info("Sentiment analysis completed",
		zap.String("request_id", requestID),
		zap.String("endpoint", endpoint),
		zap.String("method", "POST"),
		zap.String("sentiment", string(sentiment)),
		zap.Float64("confidence", confidence),
		zap.Float64("processing_time", processingTime),
		zap.Int("text_length", utf8.RuneCountInString(text)),
		zap.Bool("cached", cached),
	)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, service.ErrModelLoading):
		return "model_loading"
	case errors.Is(err, service.ErrModelFailed):
		return "model_failed"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "backend_unavailable"
	}
}

func toOutput(r *entity.AnalysisResult) *AnalysisOutput {
	return &AnalysisOutput{
		Text:           r.Text,
		Sentiment:      r.Sentiment,
		Confidence:     r.Confidence,
		ProcessingTime: r.ProcessingTime,
	}
}
