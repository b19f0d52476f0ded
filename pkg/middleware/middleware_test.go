package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/i18n"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	config := DefaultConfig("tms-core", testLogger)
	config.EnableTracing = false
	config.Translator = i18n.MustNew(i18n.LangEN)
	Setup(router, config)
	return router
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIErrorResponse {
	t.Helper()
	var body APIErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestUserContext(t *testing.T) {
	router := newRouter(t)
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user":    c.GetString(ContextKeyUserID),
			"role":    c.GetString(ContextKeyUserRole),
			"company": c.GetString(ContextKeyCompanyID),
			"lang":    GetLanguage(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderUserID, "user-1")
	req.Header.Set(HeaderUserRole, "carrier")
	req.Header.Set(HeaderCompanyID, "company-1")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"user-1","role":"carrier","company":"company-1","lang":"ru"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(HeaderCorrelationID))
}

func TestErrorResponder(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", fmt.Errorf("shipping not found: s-1"), http.StatusNotFound, "RESOURCE_NOT_FOUND"},
		{"unavailable action", fmt.Errorf("action confirmShipping not available"), http.StatusUnprocessableEntity, "ACTION_UNAVAILABLE"},
		{"fault", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(t)
			router.GET("/fail", func(c *gin.Context) {
				NewErrorResponder(c, testLogger).RespondWithError(tt.err)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, "/fail", body.Path)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestNoRoute(t *testing.T) {
	router := newRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ROUTE_NOT_FOUND", decodeError(t, w).Code)
}

func TestBindAndValidate(t *testing.T) {
	type cancelRequest struct {
		Number string `json:"number" binding:"required,shipping_number"`
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{"valid", `{"number":"SH000123"}`, http.StatusOK, "", ""},
		{"missing", `{}`, http.StatusBadRequest, "VALIDATION_ERROR", "number"},
		{"wrong format", `{"number":"123"}`, http.StatusBadRequest, "VALIDATION_ERROR", "number"},
		{"malformed", `{"number":`, http.StatusBadRequest, "BAD_REQUEST", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(t)
			router.POST("/cancel", func(c *gin.Context) {
				var req cancelRequest
				if appErr := BindAndValidate(c, &req); appErr != nil {
					NewErrorResponder(c, testLogger).RespondWithAppError(appErr)
					return
				}
				c.JSON(http.StatusOK, req)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/cancel", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode == "" {
				return
			}
			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body.Code)
			if tt.wantField != "" {
				assert.Contains(t, body.Details, tt.wantField)
			}
		})
	}
}

func TestReadinessCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ready", ReadinessCheck("tms-core", func(ctx context.Context) error {
		return fmt.Errorf("mongodb down")
	}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "mongodb down")
}
