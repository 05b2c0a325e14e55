package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError(t *testing.T) {
	t.Run("returns structured error response", func(t *testing.T) {
		router := gin.New()
		router.GET("/test", func(c *gin.Context) {
			c.Set("request_id", "test-request-id")
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input")
		})

		req, _ := http.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.False(t, response.Success)
		assert.NotNil(t, response.Error)
		assert.Equal(t, "VALIDATION_ERROR", response.Error.Code)
		assert.Equal(t, "invalid input", response.Error.Message)
		assert.Equal(t, "test-request-id", response.Meta.RequestID)
	})

	t.Run("returns 503 error response", func(t *testing.T) {
		router := gin.New()
		router.GET("/test", func(c *gin.Context) {
			respondError(c, http.StatusServiceUnavailable, "MODEL_LOADING", "model is loading, retry shortly")
		})

		req, _ := http.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "MODEL_LOADING", response.Error.Code)
	})
}

func TestNewMeta(t *testing.T) {
	t.Run("uses existing request ID", func(t *testing.T) {
		router := gin.New()
		router.GET("/test", func(c *gin.Context) {
			c.Set("request_id", "existing-id")
			meta := newMeta(c)
			c.JSON(http.StatusOK, meta)
		})

		req, _ := http.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var meta MetaInfo
		err := json.Unmarshal(w.Body.Bytes(), &meta)
		assert.NoError(t, err)
		assert.Equal(t, "existing-id", meta.RequestID)
		assert.NotEmpty(t, meta.Timestamp)
	})

	t.Run("generates new request ID when not set", func(t *testing.T) {
		router := gin.New()
		router.GET("/test", func(c *gin.Context) {
			meta := newMeta(c)
			c.JSON(http.StatusOK, meta)
		})

		req, _ := http.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var meta MetaInfo
		err := json.Unmarshal(w.Body.Bytes(), &meta)
		assert.NoError(t, err)
		assert.NotEmpty(t, meta.RequestID)
	})
}
