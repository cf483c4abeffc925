// Package services contains server-side business logic: authentication and
// token revocation, the catalog search proxy, the saved-movie writer and
// the asynchronous audit trail.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/moviesearch/internal/common"
	"github.com/dmitrijs2005/moviesearch/internal/cryptox"
	"github.com/dmitrijs2005/moviesearch/internal/dbx"
	"github.com/dmitrijs2005/moviesearch/internal/logging"
	"github.com/dmitrijs2005/moviesearch/internal/server/auth"
	"github.com/dmitrijs2005/moviesearch/internal/server/config"
	"github.com/dmitrijs2005/moviesearch/internal/server/models"
	"github.com/dmitrijs2005/moviesearch/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/moviesearch/internal/server/validation"
)

// LoginRequest is the body of a login call.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResult is a freshly issued token with the minimal user profile.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Authenticator provides the session operations:
// - Login: verify credentials and mint a token
// - Authorize: reject revoked tokens, then verify signature and expiry
// - Logout: revoke a token until its natural expiry
type Authenticator struct {
	pool             *dbx.Pool
	repomanager      repomanager.RepositoryManager
	blacklist        *TokenBlacklist
	audit            Auditor
	validator        *validation.Validator
	logger           logging.Logger
	jwtSecret        []byte
	validityDuration time.Duration
	now              func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthenticator constructs an Authenticator using repositories and
// server config.
func NewAuthenticator(pool *dbx.Pool, m repomanager.RepositoryManager, bl *TokenBlacklist, audit Auditor, v *validation.Validator, cfg *config.Config, l logging.Logger) *Authenticator {
	return &Authenticator{
		pool:             pool,
		repomanager:      m,
		blacklist:        bl,
		audit:            audit,
		validator:        v,
		logger:           l.With("module", "auth"),
		jwtSecret:        []byte(cfg.SecretKey),
		validityDuration: cfg.TokenValidityDuration,
		now:              time.Now,
	}
}

// Login checks the credentials and returns a signed token. Unknown users and
// wrong passwords both yield common.ErrorUnauthorized. Malformed input yields
// validation.Errors. Every outcome is audited.
func (a *Authenticator) Login(ctx context.Context, req LoginRequest, meta models.RequestMeta) (*LoginResult, error) {
	req.Username = strings.TrimSpace(req.Username)

	if err := a.validator.Struct(req); err != nil {
		a.auditAuth(validation.Sanitize(req.Username), false, meta)
		return nil, err
	}

	username := validation.Sanitize(req.Username)

	user, err := a.repomanager.Users(a.pool.Next()).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// keep the response time close to a wrong-password attempt
			cryptox.CheckPassword(a.dummyPasswordHash(), []byte(req.Password))
			a.auditAuth(username, false, meta)
			return nil, common.ErrorUnauthorized
		}
		a.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if !cryptox.CheckPassword(user.PasswordHash, []byte(req.Password)) {
		a.auditAuth(username, false, meta)
		return nil, common.ErrorUnauthorized
	}

	token, expiresAt, err := auth.GenerateToken(user.ID, user.Username, a.jwtSecret, a.validityDuration, a.now())
	if err != nil {
		if errors.Is(err, common.ErrMissingSecret) {
			a.logger.Error(ctx, "cannot sign token", "error", err)
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	a.auditAuth(username, true, meta)
	a.logger.Info(ctx, "user logged in", "user_id", user.ID, "username", user.Username)

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authorize returns the claims of a valid, unrevoked token. Revocation is
// checked before the signature, and every rejection is reported as
// common.ErrInvalidToken. A failed revocation lookup also rejects the token.
func (a *Authenticator) Authorize(ctx context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, common.ErrInvalidToken
	}

	revoked, err := a.blacklist.Contains(ctx, token)
	if err != nil {
		a.logger.Error(ctx, "blacklist lookup failed", "error", err)
		return nil, common.ErrInvalidToken
	}
	if revoked {
		return nil, common.ErrInvalidToken
	}

	claims, err := auth.ParseToken(token, a.jwtSecret, a.now())
	if err != nil {
		if errors.Is(err, common.ErrMissingSecret) {
			return nil, err
		}
		a.logger.Debug(ctx, "token rejected", "error", err)
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Logout revokes token until its expiry. It never fails: forged, malformed
// and already expired tokens are ignored, and storage errors are logged.
func (a *Authenticator) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}

	claims, err := auth.ParseForRevocation(token, a.jwtSecret)
	if err != nil {
		a.logger.Debug(ctx, "logout with unusable token", "error", err)
		return
	}

	expiresAt := claims.ExpiresAt.Time
	if !expiresAt.After(a.now()) {
		a.logger.Debug(ctx, "logout with expired token", "username", claims.Username)
		return
	}

	if err := a.blacklist.Add(ctx, token, expiresAt); err != nil {
		a.logger.Error(ctx, "cannot revoke token", "username", claims.Username, "error", err)
		return
	}

	a.logger.Info(ctx, "token revoked", "username", claims.Username)
}

func (a *Authenticator) auditAuth(username string, success bool, meta models.RequestMeta) {
	a.audit.LogAuth(models.AuthLog{Username: username, Success: success, RequestMeta: meta})
}

// dummyPasswordHash is compared against when the user does not exist.
func (a *Authenticator) dummyPasswordHash() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = cryptox.HashPassword([]byte("not-a-real-password"), cryptox.DefaultCost)
	})
	return a.dummyHash
}
