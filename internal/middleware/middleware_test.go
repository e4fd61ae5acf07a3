package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "sheetnorm/internal/errors"
	"sheetnorm/internal/shared/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestID(t *testing.T) {
	t.Run("generates id when missing", func(t *testing.T) {
		var captured string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = GetReqID(r.Context())
		})

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/", nil)
		RequestID(next).ServeHTTP(w, r)

		assert.NotEmpty(t, captured)
		assert.Equal(t, captured, w.Header().Get("X-Request-ID"))
	})

	t.Run("preserves incoming id", func(t *testing.T) {
		var captured string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = GetReqID(r.Context())
		})

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Request-ID", "req-42")
		RequestID(next).ServeHTTP(w, r)

		assert.Equal(t, "req-42", captured)
		assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 1, discardLogger())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := rl.Handler(next)

	// First request consumes the single burst token
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Second request is rejected
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate-limit-exceeded")
}

func TestStructuredLogger(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/parse", nil)
	RequestID(StructuredLogger(logger)(next)).ServeHTTP(w, r)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "request started")
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "request completed")
	testutil.AssertLogAttr(t, handler, "path", "/api/parse")
	testutil.AssertLogAttr(t, handler, "status", int64(http.StatusAccepted))
	testutil.AssertNoErrors(t, handler)
}

func TestRecoverer(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	Recoverer(discardLogger())(next).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/problem+json")
}

func TestCORS(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CORS(cfg)(next)

	t.Run("allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Origin", "http://localhost:3000")
		handler.ServeHTTP(w, r)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("OPTIONS", "/", nil)
		r.Header.Set("Origin", "http://localhost:3000")
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("disallowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Origin", "http://evil.example")
		handler.ServeHTTP(w, r)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSecureHeadersConfigurable(t *testing.T) {
	sh := DefaultSecureHeaders()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	sh.Handler(next).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.NotEmpty(t, w.Header().Get("Permissions-Policy"))
	// No TLS on the test request, so HSTS is not set
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestValidationMiddleware(t *testing.T) {
	logger := discardLogger()
	handler := apierrors.NewErrorHandler(logger, false)
	vm := NewValidationMiddleware(logger, handler)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid json passes", func(t *testing.T) {
		body := `{"file":"revenue.xlsx"}`
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/api/parse", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		r.ContentLength = int64(len(body))
		vm.ValidateRequest(next).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid json rejected", func(t *testing.T) {
		body := `{"file":`
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/api/parse", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		r.ContentLength = int64(len(body))
		vm.ValidateRequest(next).ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("oversized body rejected", func(t *testing.T) {
		vm2 := NewValidationMiddleware(logger, handler)
		vm2.SetMaxBodySize(8)

		body := `{"file":"revenue.xlsx"}`
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/api/parse", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		r.ContentLength = int64(len(body))
		vm2.ValidateRequest(next).ServeHTTP(w, r)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("GET skips validation", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/health", nil)
		vm.ValidateRequest(next).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestValidateStruct(t *testing.T) {
	logger := discardLogger()
	handler := apierrors.NewErrorHandler(logger, false)
	vm := NewValidationMiddleware(logger, handler)

	type parseRequest struct {
		File    string `json:"file" validate:"required,filename"`
		Section string `json:"section" validate:"omitempty,section"`
	}

	t.Run("valid", func(t *testing.T) {
		err := vm.ValidateStruct(parseRequest{File: "revenue.xlsx", Section: "revenue"})
		assert.NoError(t, err)
	})

	t.Run("traversal filename", func(t *testing.T) {
		err := vm.ValidateStruct(parseRequest{File: "../etc/passwd"})
		require.Error(t, err)

		apiErr, ok := err.(*apierrors.APIError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	})

	t.Run("bad section", func(t *testing.T) {
		err := vm.ValidateStruct(parseRequest{File: "revenue.xlsx", Section: "profits"})
		assert.Error(t, err)
	})
}

func TestContentTypeValidator(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := ContentTypeValidator("application/json", "multipart/form-data")(next)

	t.Run("allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/", strings.NewReader("{}"))
		r.Header.Set("Content-Type", "application/json")
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/", strings.NewReader("{}"))
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty body skipped", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/", nil)
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unsupported", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/", strings.NewReader("<xml/>"))
		r.Header.Set("Content-Type", "text/xml")
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})
}
