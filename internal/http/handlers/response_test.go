package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/isp-onboarding-backend/internal/services"
)

func Test_fail_500_LogsAndBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// capture logs from LoggerFrom(c)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	// simulate RequestID + request-scoped logger
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-500")
		c.Set("logger", &logger)
		c.Next()
	})

	r.GET("/boom", func(c *gin.Context) {
		internalError(c, errors.New("disk full"), msgSubmitFailed, false)
	})
	r.GET("/boom-verbose", func(c *gin.Context) {
		internalError(c, errors.New("disk full"), msgSubmitFailed, true)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Success || resp.RequestID != "rid-500" || resp.Code != ErrCodeInternal || resp.Message != "Error submitting form" {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if resp.Error != "Internal server error" {
		t.Fatalf("detail must be generic, got %q", resp.Error)
	}
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected error log, got: %s", buf.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom-verbose", nil))
	resp = ErrorResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "disk full" {
		t.Fatalf("expected exposed detail, got %+v", resp)
	}
}

func Test_Fail_4xx_NoLogAndOmitsEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-404")
		c.Set("logger", &logger)
		c.Next()
	})
	r.GET("/missing", func(c *gin.Context) {
		Fail(c, http.StatusNotFound, ErrCodeFormNotFound, msgFormNotFound)
	})
	r.GET("/created", func(c *gin.Context) {
		ok(c, http.StatusCreated, gin.H{"success": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["success"] != false || body["code"] != "FORM_NOT_FOUND" || body["request_id"] != "rid-404" {
		t.Fatalf("unexpected body: %#v", body)
	}
	for _, k := range []string{"duplicateField", "errors", "error"} {
		if _, present := body[k]; present {
			t.Fatalf("%s should be omitted: %#v", k, body)
		}
	}
	if buf.Len() != 0 {
		t.Fatalf("4xx must not log, got %s", buf.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/created", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestErrorResponse_ValidationShape(t *testing.T) {
	b, err := json.Marshal(ErrorResponse{
		Code:    ErrCodeValidation,
		Message: "Validation failed",
		Errors:  []services.FieldError{{Field: "customerDetails.email", Message: "email must be a valid email address"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if !strings.Contains(s, `"errors":[{"field":"customerDetails.email","message":"email must be a valid email address"}]`) {
		t.Fatalf("unexpected json: %s", s)
	}
	if !strings.Contains(s, `"success":false`) {
		t.Fatalf("success must always be present: %s", s)
	}
}
