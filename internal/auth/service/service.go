// Package service implements bearer-token authentication over a seeded user
// table. Tokens are short-lived JWTs; refresh rotates the token id and
// revokes the old one.
package service

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"riskboard/internal/platform/middleware"
	dErrors "riskboard/pkg/domain-errors"
)

const tokenTTL = time.Hour

// User is the public view of an account. Password hashes never leave the
// service.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type account struct {
	User
	passwordHash []byte
}

// Credentials is the login payload. Username also accepts the account email.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is the login and refresh response.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues, verifies, and rotates tokens. It satisfies
// middleware.TokenVerifier.
type Service struct {
	signingKey []byte
	logger     *slog.Logger
	now        func() time.Time

	accounts []account

	mu      sync.Mutex
	revoked map[string]time.Time
}

// New constructs the auth service with the built-in dev accounts. Passwords
// are hashed at startup; there is no self-service registration.
func New(signingKey string, logger *slog.Logger) (*Service, error) {
	s := &Service{
		signingKey: []byte(signingKey),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		revoked:    make(map[string]time.Time),
	}
	seed := []struct {
		user     User
		password string
	}{
		{User{ID: "u-admin", Username: "admin", Email: "admin@riskboard.local", Name: "Administrator", Role: "admin"}, "admin123"},
		{User{ID: "u-auditor", Username: "auditor", Email: "auditor@riskboard.local", Name: "Lead Auditor", Role: "auditor"}, "auditor123"},
		{User{ID: "u-risk", Username: "riskmanager", Email: "risk@riskboard.local", Name: "Risk Manager", Role: "risk_manager"}, "risk123"},
	}
	for _, entry := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(entry.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("seed users: %w", err)
		}
		s.accounts = append(s.accounts, account{User: entry.user, passwordHash: hash})
	}
	return s, nil
}

// Login exchanges credentials for a session token.
func (s *Service) Login(creds Credentials) (Session, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return Session{}, dErrors.New(dErrors.CodeBadRequest, "username and password are required")
	}

	acct, ok := s.lookup(creds.Username)
	if !ok {
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(creds.Password)); err != nil {
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.issue(acct.User)
	if err != nil {
		return Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "issue token")
	}
	s.logger.Info("user logged in", "user", acct.Username)
	return Session{Token: token, User: acct.User}, nil
}

// Refresh rotates a valid token. The old token id is revoked for the
// remainder of its lifetime.
func (s *Service) Refresh(tokenString string) (Session, error) {
	parsed, err := s.parse(tokenString)
	if err != nil {
		return Session{}, err
	}
	acct, ok := s.lookupByID(parsed.Subject)
	if !ok {
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "unknown account")
	}

	s.revoke(parsed.ID, parsed.ExpiresAt.Time)

	token, err := s.issue(acct.User)
	if err != nil {
		return Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "issue token")
	}
	return Session{Token: token, User: acct.User}, nil
}

// CurrentUser resolves a token to its account.
func (s *Service) CurrentUser(tokenString string) (User, error) {
	parsed, err := s.parse(tokenString)
	if err != nil {
		return User{}, err
	}
	acct, ok := s.lookupByID(parsed.Subject)
	if !ok {
		return User{}, dErrors.New(dErrors.CodeUnauthorized, "unknown account")
	}
	return acct.User, nil
}

// VerifyToken implements middleware.TokenVerifier.
func (s *Service) VerifyToken(tokenString string) (*middleware.TokenClaims, error) {
	parsed, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		UserID: parsed.Subject,
		Role:   parsed.Role,
		JTI:    parsed.ID,
	}, nil
}

func (s *Service) issue(user User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	return token.SignedString(s.signingKey)
}

func (s *Service) parse(tokenString string) (*claims, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(tokenString, &parsed, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid or expired token")
	}
	if s.isRevoked(parsed.ID) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been rotated")
	}
	return &parsed, nil
}

func (s *Service) lookup(usernameOrEmail string) (account, bool) {
	needle := strings.ToLower(strings.TrimSpace(usernameOrEmail))
	for _, acct := range s.accounts {
		if strings.ToLower(acct.Username) == needle || strings.ToLower(acct.Email) == needle {
			return acct, true
		}
	}
	return account{}, false
}

func (s *Service) lookupByID(id string) (account, bool) {
	for _, acct := range s.accounts {
		if acct.ID == id {
			return acct, true
		}
	}
	return account{}, false
}

func (s *Service) revoke(jti string, expires time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Drop entries for tokens that have expired on their own.
	now := s.now()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[jti] = expires
}

func (s *Service) isRevoked(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok
}
