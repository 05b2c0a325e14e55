package entity

// Sentiment represents a normalized sentiment label
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// IsValid returns true if the sentiment is a member of the label set
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// AnalysisResult represents the outcome of a single sentiment analysis.
// Results are created per request and never persisted.
type AnalysisResult struct {
	Text           string    `json:"text"`
	Sentiment      Sentiment `json:"sentiment"`
	Confidence     float64   `json:"confidence"`
	ProcessingTime float64   `json:"processing_time"`
}

// NewAnalysisResult creates an AnalysisResult echoing the analyzed text
func NewAnalysisResult(text string, sentiment Sentiment, confidence, processingTime float64) *AnalysisResult {
	return &AnalysisResult{
		Text:           text,
		Sentiment:      sentiment,
		Confidence:     confidence,
		ProcessingTime: processingTime,
	}
}
