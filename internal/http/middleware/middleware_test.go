package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamsps/maintenance-portal/internal/model"
)

type fakeAuthenticator struct {
	principals map[string]model.Principal
	clients    map[uuid.UUID]bool
	expiresAt  time.Time
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, raw string) (model.Principal, time.Time, error) {
	p, ok := f.principals[raw]
	if !ok {
		return model.Principal{}, time.Time{}, errors.New("bad token")
	}
	return p, f.expiresAt, nil
}

func (f *fakeAuthenticator) ClientContext(_ context.Context, id uuid.UUID) error {
	if !f.clients[id] {
		return errors.New("no such client")
	}
	return nil
}

func setup(t *testing.T) (*gin.Engine, *fakeAuthenticator, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	clientID := uuid.New()
	authn := &fakeAuthenticator{
		principals: map[string]model.Principal{
			"admin":  {UserID: uuid.New(), Role: model.RoleAdmin},
			"client": {UserID: uuid.New(), ClientID: uuid.New(), Role: model.RoleClientAdmin},
		},
		clients:   map[uuid.UUID]bool{clientID: true},
		expiresAt: time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC),
	}
	router := gin.New()
	router.Use(RequestID(), Auth(authn))
	router.GET("/whoami", func(c *gin.Context) {
		p, ok := MustPrincipal(c)
		require.True(t, ok)
		scope := ""
		if id := p.ScopeClientID(); id != nil {
			scope = id.String()
		}
		c.JSON(http.StatusOK, gin.H{"role": p.Role, "scope": scope, "expires": TokenExpiry(c)})
	})
	return router, authn, clientID
}

func get(router http.Handler, token string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequiresBearerToken(t *testing.T) {
	router, _, _ := setup(t)

	rec := get(router, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"authorization is required"}`, rec.Body.String())

	rec = get(router, "nope", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(router, "admin", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, rec.Body.String(), `"expires":"2026-03-10T21:00:00Z"`)
}

func TestClientContextOnlyForAdmins(t *testing.T) {
	router, _, clientID := setup(t)
	header := map[string]string{ClientContextHeader: clientID.String()}

	rec := get(router, "admin", header)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), clientID.String())

	rec = get(router, "client", header)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), clientID.String())

	rec = get(router, "admin", map[string]string{ClientContextHeader: "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(router, "admin", map[string]string{ClientContextHeader: uuid.NewString()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	router, _, _ := setup(t)
	rec := get(router, "admin", map[string]string{"X-Request-ID": "req-42"})
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestLoggerLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	router := gin.New()
	router.Use(RequestID(), Logger(zerolog.New(&buf)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := buf.String()
	assert.Contains(t, out, `"level":"info","status":200`)
	assert.Contains(t, out, `"level":"warn","status":404`)
	assert.Contains(t, out, `"level":"error","status":500`)
}
