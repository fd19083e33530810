package handler

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskboard/internal/auth/service"
	"riskboard/pkg/testutil"
)

func newAuthRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := service.New("test-signing-key", slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	r := chi.NewRouter()
	New(svc, slog.New(slog.DiscardHandler)).Register(r)
	return r
}

func login(t *testing.T, router http.Handler) service.Session {
	t.Helper()
	creds := service.Credentials{Username: "admin", Password: "admin123"}
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", creds))
	testutil.AssertStatus(t, rr, http.StatusOK)
	return *testutil.UnmarshalResponse[service.Session](t, rr)
}

func TestLoginRoute(t *testing.T) {
	router := newAuthRouter(t)

	session := login(t, router)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "admin", session.User.Username)

	bad := service.Credentials{Username: "admin", Password: "nope"}
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", bad))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")

	empty := service.Credentials{}
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", empty))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
}

func TestMeRoute(t *testing.T) {
	router := newAuthRouter(t)
	session := login(t, router)

	req := testutil.NewRequest(t, http.MethodGet, "/auth/me")
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	user := testutil.UnmarshalResponse[service.User](t, rr)
	assert.Equal(t, "u-admin", user.ID)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/auth/me"))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestRefreshRoute(t *testing.T) {
	router := newAuthRouter(t)
	session := login(t, router)

	req := testutil.NewRequest(t, http.MethodPost, "/auth/refresh")
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	refreshed := testutil.UnmarshalResponse[service.Session](t, rr)
	assert.NotEqual(t, session.Token, refreshed.Token)

	// The rotated token no longer authenticates.
	req = testutil.NewRequest(t, http.MethodGet, "/auth/me")
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}
