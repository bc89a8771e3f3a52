package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestKeyByIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = net.JoinHostPort("203.0.113.9", "12345")

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	key := KeyByIP()(c)
	if !strings.HasPrefix(key, "ip:") || !strings.Contains(key, "203.0.113.9") {
		t.Fatalf("expected ip-based key; got %q", key)
	}
}

func TestRequestClass(t *testing.T) {
	cases := map[string]string{
		http.MethodGet:     ClassRead,
		http.MethodHead:    ClassRead,
		http.MethodOptions: ClassRead,
		http.MethodPost:    ClassWrite,
		http.MethodPut:     ClassWrite,
		http.MethodDelete:  ClassWrite,
	}
	for method, want := range cases {
		if got := requestClass(httptest.NewRequest(method, "/", nil)); got != want {
			t.Errorf("%s: got %q want %q", method, got, want)
		}
	}
}

func TestBucketFor_ReusesPerClassAndKey(t *testing.T) {
	rl := NewRateLimiter(Budget{RPS: 2, Burst: 0}, Budget{RPS: 5, Burst: 3}, KeyByIP())

	w := rl.bucketFor(ClassWrite, "k1")
	if w.Burst() != 1 {
		t.Fatalf("write burst not coerced to 1: %d", w.Burst())
	}
	if got := rl.bucketFor(ClassWrite, "k1"); got != w {
		t.Fatalf("write bucket not reused")
	}
	r := rl.bucketFor(ClassRead, "k1")
	if r == w || r.Burst() != 3 {
		t.Fatalf("read bucket must be separate with burst 3, got burst %d", r.Burst())
	}
	if rl.bucketFor(ClassWrite, "k2") == w {
		t.Fatalf("distinct clients must not share a bucket")
	}
}

func TestBucketFor_SweepsIdle(t *testing.T) {
	rl := NewRateLimiter(Budget{RPS: 1, Burst: 1}, Budget{RPS: 1, Burst: 1}, KeyByIP())
	base := time.Now()
	rl.now = func() time.Time { return base }
	old := rl.bucketFor(ClassWrite, "old")

	rl.now = func() time.Time { return base.Add(rl.ttl) }
	rl.mu.Lock()
	rl.lookups = sweepEvery - 1
	rl.mu.Unlock()
	_ = rl.bucketFor(ClassRead, "new")

	rl.mu.Lock()
	_, hasOld := rl.buckets[ClassWrite+"|old"]
	_, hasNew := rl.buckets[ClassRead+"|new"]
	lookups := rl.lookups
	rl.mu.Unlock()
	if hasOld || !hasNew {
		t.Fatalf("sweep: old=%v new=%v", hasOld, hasNew)
	}
	if lookups != 0 {
		t.Fatalf("lookup counter not reset: %d", lookups)
	}
	if rl.bucketFor(ClassWrite, "old") == old {
		t.Fatalf("stale bucket was refreshed instead of replaced")
	}
}

func TestIsRateBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if IsRateBypass(c) {
		t.Fatalf("expected IsRateBypass=false by default")
	}
	c.Set(ctxKeyRateBypass, true)
	if !IsRateBypass(c) {
		t.Fatalf("expected IsRateBypass=true when set")
	}
	c.Set(ctxKeyRateBypass, "yes")
	if IsRateBypass(c) {
		t.Fatalf("expected IsRateBypass=false when non-bool stored")
	}
}

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(rl.Handler())
	r.POST("/api/forms", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.GET("/api/forms/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHandler_WritesAndReadsHaveSeparateBudgets(t *testing.T) {
	rl := NewRateLimiter(Budget{RPS: 1, Burst: 1}, Budget{RPS: 100, Burst: 5}, KeyByIP())
	r := newLimitedRouter(rl)
	before := testutil.ToFloat64(rateLimited.WithLabelValues(ClassWrite))

	if w := serve(r, http.MethodPost, "/api/forms"); w.Code != http.StatusCreated {
		t.Fatalf("first POST = %d", w.Code)
	}
	w := serve(r, http.MethodPost, "/api/forms")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("Retry-After=%q want 1", got)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["code"] != "RATE_LIMITED" || body["success"] != false || body["request_id"] != w.Header().Get(HeaderRequestID) {
		t.Fatalf("unexpected body: %v", body)
	}
	if got := testutil.ToFloat64(rateLimited.WithLabelValues(ClassWrite)); got != before+1 {
		t.Fatalf("write rejections=%v want %v", got, before+1)
	}

	// The exhausted write bucket does not block reads.
	for i := 0; i < 5; i++ {
		if w := serve(r, http.MethodGet, "/api/forms/abc"); w.Code != http.StatusOK {
			t.Fatalf("GET %d = %d", i, w.Code)
		}
	}
}

func TestHandler_RetryAfterTracksRefill(t *testing.T) {
	rl := NewRateLimiter(Budget{RPS: 0.1, Burst: 1}, Budget{RPS: 1, Burst: 1}, KeyByIP())
	r := newLimitedRouter(rl)

	_ = serve(r, http.MethodPost, "/api/forms")
	w := serve(r, http.MethodPost, "/api/forms")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("want 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "10" {
		t.Fatalf("Retry-After=%q want 10", got)
	}
}

func TestHandler_ZeroRateNeverRefills(t *testing.T) {
	rl := NewRateLimiter(Budget{RPS: 0, Burst: 1}, Budget{RPS: 1, Burst: 1}, KeyByIP())
	r := newLimitedRouter(rl)

	if w := serve(r, http.MethodPost, "/api/forms"); w.Code != http.StatusCreated {
		t.Fatalf("first POST = %d", w.Code)
	}
	w := serve(r, http.MethodPost, "/api/forms")
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "1" {
		t.Fatalf("want 429 with Retry-After 1, got %d %q", w.Code, w.Header().Get("Retry-After"))
	}
}

func TestHandler_BypassSkipsLimiter(t *testing.T) {
	rl := NewRateLimiter(Budget{RPS: 0, Burst: 1}, Budget{RPS: 0, Burst: 1}, KeyByIP())
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(ctxKeyRateBypass, true); c.Next() })
	r.Use(rl.Handler())
	r.POST("/api/forms", func(c *gin.Context) { c.Status(http.StatusCreated) })

	for i := 0; i < 3; i++ {
		if w := serve(r, http.MethodPost, "/api/forms"); w.Code != http.StatusCreated {
			t.Fatalf("replay %d = %d", i, w.Code)
		}
	}
}

func TestHandler_RejectedRequestDoesNotSpendToken(t *testing.T) {
	rl := NewRateLimiter(Budget{RPS: 1, Burst: 1}, Budget{RPS: 1, Burst: 1}, KeyByIP())
	base := time.Now()
	rl.now = func() time.Time { return base }
	r := newLimitedRouter(rl)

	_ = serve(r, http.MethodPost, "/api/forms")
	for i := 0; i < 3; i++ {
		if w := serve(r, http.MethodPost, "/api/forms"); w.Code != http.StatusTooManyRequests {
			t.Fatalf("POST %d = %d", i, w.Code)
		}
	}

	// One second later exactly one token is back.
	rl.now = func() time.Time { return base.Add(time.Second) }
	if w := serve(r, http.MethodPost, "/api/forms"); w.Code != http.StatusCreated {
		t.Fatalf("POST after refill = %d", w.Code)
	}
}
