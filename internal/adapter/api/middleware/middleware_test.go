package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedLimiter struct {
	allow bool
	wait  time.Duration
	keys  []string
}

func (l *fixedLimiter) Allow(key, action string) (bool, time.Duration) {
	l.keys = append(l.keys, key+"/"+action)
	return l.allow, l.wait
}

func newContext(target string, header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer header", target: "/", header: "Bearer abc", want: "abc"},
		{name: "lowercase scheme", target: "/", header: "bearer  abc ", want: "abc"},
		{name: "query token", target: "/?token=xyz", want: "xyz"},
		{name: "header wins over query", target: "/?token=xyz", header: "Bearer abc", want: "abc"},
		{name: "missing", target: "/", wantErr: true},
		{name: "wrong scheme", target: "/", header: "Basic abc", wantErr: true},
		{name: "empty bearer", target: "/", header: "Bearer ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(tt.target, tt.header)
			got, err := TokenFromRequest(c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRateLimitPasses(t *testing.T) {
	limiter := &fixedLimiter{allow: true}
	c, rec := newContext("/", "")

	called := false
	err := RateLimit(limiter)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusNoContent)
	})(c)

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"10.0.0.7/" + ActionRequest}, limiter.keys)
}

func TestRateLimitBlocks(t *testing.T) {
	limiter := &fixedLimiter{allow: false, wait: 1500 * time.Millisecond}
	c, rec := newContext("/", "")

	err := RateLimit(limiter)(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "TOO_MANY_REQUESTS")
}

func TestRateLimitRetryAfterAtLeastOneSecond(t *testing.T) {
	limiter := &fixedLimiter{allow: false, wait: 0}
	c, rec := newContext("/", "")

	require.NoError(t, RateLimit(limiter)(func(c echo.Context) error { return nil })(c))
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestIdentityFromEmptyContext(t *testing.T) {
	c, _ := newContext("/", "")
	assert.Nil(t, IdentityFrom(c))
}
