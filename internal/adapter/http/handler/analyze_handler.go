package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ywang1110/SentimentSense/internal/usecase"
)

// AnalyzeRequest is the body for POST /analyze
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzeBatchRequest is the body for POST /analyze/batch
type AnalyzeBatchRequest struct {
	Texts []string `json:"texts"`
}

// AnalyzeHandler handles sentiment analysis HTTP requests
type AnalyzeHandler struct {
	analysisUC usecase.AnalysisUsecase
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analysisUC usecase.AnalysisUsecase) *AnalyzeHandler {
	return &AnalyzeHandler{analysisUC: analysisUC}
}

// Analyze handles POST /analyze.
// The response echoes the analyzed text with its sentiment label, the
// backend's raw confidence for that label, and the wall-clock duration of
// the classification call.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleInvalidRequest(c, "request body must be JSON with a text field")
		return
	}

	output, err := h.analysisUC.Analyze(c.Request.Context(), req.Text, c.GetString("request_id"))
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, output)
}

// AnalyzeBatch handles POST /analyze/batch.
// Results preserve input order; validation is fail-fast over the batch.
func (h *AnalyzeHandler) AnalyzeBatch(c *gin.Context) {
	var req AnalyzeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleInvalidRequest(c, "request body must be JSON with a texts array")
		return
	}

	output, err := h.analysisUC.AnalyzeBatch(c.Request.Context(), req.Texts, c.GetString("request_id"))
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, output)
}
