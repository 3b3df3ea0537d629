package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/application/command"
	"github.com/oksasatya/communet/internal/application/mediator"
	"github.com/oksasatya/communet/internal/domain/entity"
)

func newLimitedEngine(t *testing.T, limit int, allow AllowFunc) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(RealIP())
	r.GET("/ping", RateLimit(rdb, limit, time.Minute, KeyByIPAndPath(), allow), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, mr
}

func get(r http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	r, mr := newLimitedEngine(t, 2, nil)

	w := get(r, "/ping", "203.0.113.7:1234")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Reset"))

	assert.Equal(t, http.StatusNoContent, get(r, "/ping", "203.0.113.7:1234").Code)

	w = get(r, "/ping", "203.0.113.7:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate limit exceeded")

	// other clients keep their own window
	assert.Equal(t, http.StatusNoContent, get(r, "/ping", "203.0.113.8:1234").Code)

	mr.FastForward(time.Minute)
	assert.Equal(t, http.StatusNoContent, get(r, "/ping", "203.0.113.7:1234").Code)
}

func TestRateLimitAllowBypassesCounter(t *testing.T) {
	r, mr := newLimitedEngine(t, 1, AllowPrivateIP())

	for range 3 {
		assert.Equal(t, http.StatusNoContent, get(r, "/ping", "10.0.0.5:1234").Code)
	}
	assert.Empty(t, mr.Keys())
}

func TestRateLimitFailsOpen(t *testing.T) {
	r, mr := newLimitedEngine(t, 1, nil)
	mr.Close()

	for range 3 {
		assert.Equal(t, http.StatusNoContent, get(r, "/ping", "203.0.113.7:1234").Code)
	}
}

func TestRateLimitWithoutRedisIsPassthrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for range 3 {
		w := get(r, "/ping", "203.0.113.7:1234")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"abc":          "abc",
		"":             "",
		"Bearer":       "Bearer",
	}
	for in, want := range cases {
		assert.Equal(t, want, bearerToken(in), in)
	}
}

type profileLookup struct {
	profile *entity.Profile
	err     error
}

func (l profileLookup) Handle(context.Context, command.ExtractProfileCommand) (*entity.Profile, error) {
	return l.profile, l.err
}

func authEngine(lookup profileLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := mediator.New()
	mediator.RegisterCommand[command.ExtractProfileCommand, *entity.Profile](m, lookup)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := gin.New()
	r.GET("/me", Auth(m, logger), func(c *gin.Context) {
		p, _ := CurrentProfile(c)
		c.String(http.StatusOK, p.OID)
	})
	return r
}

func authGet(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthStatusFollowsLookupError(t *testing.T) {
	profile := &entity.Profile{}
	profile.OID = "p-1"

	cases := []struct {
		name   string
		lookup profileLookup
		header string
		status int
	}{
		{"missing header", profileLookup{profile: profile}, "", http.StatusUnauthorized},
		{"resolved", profileLookup{profile: profile}, "Bearer good", http.StatusOK},
		{"rejected token", profileLookup{err: application.ErrUnauthorized}, "Bearer bad", http.StatusUnauthorized},
		{"store down", profileLookup{err: errors.New("connection refused")}, "Bearer good", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := authGet(authEngine(tc.lookup), tc.header)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			if tc.status == http.StatusInternalServerError {
				assert.Contains(t, w.Body.String(), "internal server error")
				assert.NotContains(t, w.Body.String(), "connection refused")
			}
		})
	}
}
