package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/threatcombat/threatcombat/pkg/jwtx"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthnMiddlewareBearerHeader(t *testing.T) {
	t.Parallel()

	signer := jwtx.NewHS256([]byte("secret"), "test")
	raw, err := signer.Sign(jwtx.NewSessionClaims("user-1", "member", "chapter-1", "m@x.edu", "test", time.Hour, time.Now()))
	require.NoError(t, err)

	var gotUserID, gotRole string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromCtx(r.Context())
		gotRole = RoleFromCtx(r.Context())
	})

	h := Chain(inner, AuthnMiddleware(signer))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-1", gotUserID)
	require.Equal(t, "member", gotRole)
}

func TestAuthnMiddlewareCookie(t *testing.T) {
	t.Parallel()

	signer := jwtx.NewHS256([]byte("secret"), "test")
	raw, err := signer.Sign(jwtx.NewSessionClaims("user-2", "executive", "chapter-1", "", "test", time.Hour, time.Now()))
	require.NoError(t, err)

	h := Chain(okHandler(), AuthnMiddleware(signer))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: raw})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthnMiddlewareRejects(t *testing.T) {
	t.Parallel()

	signer := jwtx.NewHS256([]byte("secret"), "test")
	h := Chain(okHandler(), AuthnMiddleware(signer))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		raw, err := signer.Sign(jwtx.NewSessionClaims("u", "member", "", "", "test", time.Hour, time.Now().Add(-2*time.Hour)))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRoleFailsClosed(t *testing.T) {
	t.Parallel()

	signer := jwtx.NewHS256([]byte("secret"), "test")

	cases := []struct {
		name    string
		role    string
		allowed []string
		want    int
	}{
		{"role in set", "chapter_admin", []string{"chapter_admin", "super_admin"}, http.StatusOK},
		{"role not in set", "member", []string{"chapter_admin", "super_admin"}, http.StatusForbidden},
		{"empty allowed set rejects everyone", "super_admin", nil, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := Chain(okHandler(), AuthnMiddleware(signer), RequireRole(tc.allowed...))

			raw, err := signer.Sign(jwtx.NewSessionClaims("u", tc.role, "", "", "test", time.Hour, time.Now()))
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+raw)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tc.want, rec.Code)
		})
	}

	t.Run("anonymous rejected", func(t *testing.T) {
		h := Chain(okHandler(), RequireRole("member"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRateLimitByIP(t *testing.T) {
	t.Parallel()

	cfg := RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	h := Chain(okHandler(), RateLimitByIP(cfg))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"

	for range 2 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	// A different IP gets its own bucket.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.9.9.9:5555"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestIPKeyExtractor(t *testing.T) {
	t.Parallel()

	t.Run("x-forwarded-for wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
		req.RemoteAddr = "9.9.9.9:1234"
		require.Equal(t, "1.2.3.4", IPKeyExtractor(req))
	})

	t.Run("x-real-ip next", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "4.3.2.1")
		require.Equal(t, "4.3.2.1", IPKeyExtractor(req))
	})

	t.Run("remote addr fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		require.Equal(t, "9.9.9.9", IPKeyExtractor(req))
	})
}
