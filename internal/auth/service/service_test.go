package service

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "riskboard/pkg/domain-errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := New("test-signing-key", slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return svc
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.Login(Credentials{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "admin", session.User.Username)
	assert.Equal(t, "admin", session.User.Role)

	// Email works in place of the username.
	session, err = svc.Login(Credentials{Username: "auditor@riskboard.local", Password: "auditor123"})
	require.NoError(t, err)
	assert.Equal(t, "auditor", session.User.Username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(Credentials{Username: "admin", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = svc.Login(Credentials{Username: "ghost", Password: "admin123"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = svc.Login(Credentials{Username: "", Password: ""})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestVerifyTokenClaims(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.Login(Credentials{Username: "riskmanager", Password: "risk123"})
	require.NoError(t, err)

	claims, err := svc.VerifyToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-risk", claims.UserID)
	assert.Equal(t, "risk_manager", claims.Role)
	assert.NotEmpty(t, claims.JTI)

	_, err = svc.VerifyToken("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestRefreshRotatesToken(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.Login(Credentials{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(session.Token)
	require.NoError(t, err)
	assert.NotEqual(t, session.Token, refreshed.Token)

	// The old token is revoked once rotated.
	_, err = svc.VerifyToken(session.Token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = svc.VerifyToken(refreshed.Token)
	require.NoError(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.Login(Credentials{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	_, err = svc.VerifyToken(session.Token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestCurrentUser(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.Login(Credentials{Username: "auditor", Password: "auditor123"})
	require.NoError(t, err)

	user, err := svc.CurrentUser(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "Lead Auditor", user.Name)

	_, err = svc.CurrentUser("garbage")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
