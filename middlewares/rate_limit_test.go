package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// helper to reset global state between tests
func resetLimiters() {
	visitorsMu.Lock()
	visitors = make(map[string]*visitor)
	visitorsMu.Unlock()

	writeVisitorsMu.Lock()
	writeVisitors = make(map[string]*visitor)
	writeVisitorsMu.Unlock()
}

// makeTestRouter creates a Gin engine with a single middleware and a test route.
func makeTestRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return r
}

func TestRateLimitMiddleware_AllowsBurstThenBlocks(t *testing.T) {
	resetLimiters()

	router := makeTestRouter(RateLimitMiddleware())

	// The general limiter allows a burst of 100 requests per IP.
	for i := 0; i < 100; i++ {
		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200 on request %d, got %d", i+1, w.Code)
		}
	}

	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429 on request 101, got %d", w.Code)
	}
}

func TestWriteRateLimitMiddleware_IsStricter(t *testing.T) {
	resetLimiters()

	router := makeTestRouter(WriteRateLimitMiddleware())

	// The write limiter allows a burst of 10 per IP.
	for i := 0; i < 10; i++ {
		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200 on request %d, got %d", i+1, w.Code)
		}
	}

	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429 on request 11, got %d", w.Code)
	}
}

func TestWalletAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WalletAuthMiddleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"wallet": c.GetString("wallet")})
	})

	// No identity at all.
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a wallet, got %d", w.Code)
	}

	// Malformed address.
	req, _ = http.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Wallet-Address", "not-an-address")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed address, got %d", w.Code)
	}

	// Header fallback, lowercased on the way in.
	req, _ = http.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Wallet-Address", "0xAAAA000000000000000000000000000000000001")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with a wallet header, got %d", w.Code)
	}
}

func TestOptionalWalletMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OptionalWalletMiddleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"wallet": c.GetString("wallet")})
	})

	// Anonymous requests pass through.
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous request, got %d", w.Code)
	}

	// The viewer query parameter is accepted for read paths (EventSource
	// cannot set headers).
	req, _ = http.NewRequest(http.MethodGet, "/test?viewer=0xAAAA000000000000000000000000000000000001", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with viewer query, got %d", w.Code)
	}
}
