package sessions

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dkotlyar/passfort/internal/common"
	"github.com/dkotlyar/passfort/internal/dbx"
	"github.com/dkotlyar/passfort/internal/server/auth"
	"github.com/dkotlyar/passfort/internal/server/config"
	"github.com/dkotlyar/passfort/internal/server/hashing"
	"github.com/dkotlyar/passfort/internal/server/models"
	"github.com/dkotlyar/passfort/internal/server/users"
	"github.com/google/uuid"
)

// TokenPair bundles everything a client needs to stay authenticated:
// a short-lived access token plus the durable refresh credential
// (session id + raw refresh secret, returned exactly once).
type TokenPair struct {
	AccessToken  string
	SessionID    string
	RefreshToken string
	UserID       string
	Verified     bool
}

// Service is the session manager: it orchestrates login, refresh, logout,
// and revocation against the user and session repositories and the token
// codec.
type Service struct {
	db                           *sql.DB
	userRepo                     users.Repository
	sessionRepo                  Repository
	hasher                       hashing.Hasher
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewService constructs a Service using repositories and server config.
// db may be nil when the repositories are not SQL-backed; credential resets
// then run as separate statements.
func NewService(db *sql.DB, userRepo users.Repository, sessionRepo Repository, hasher hashing.Hasher, cfg *config.Config) *Service {
	return &Service{
		db:                           db,
		userRepo:                     userRepo,
		sessionRepo:                  sessionRepo,
		hasher:                       hasher,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Login verifies the password and, on success, creates a session for the
// device and mints a token pair. The login value may be a username or an
// email address. Unverified users still authenticate; the Verified flag on
// the pair tells the caller to restrict them.
func (s *Service) Login(ctx context.Context, login, password, userAgent string) (*TokenPair, error) {

	user, err := s.findByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn a hash comparison anyway so the response time does not
			// reveal whether the account exists
			_ = s.hasher.Verify(password, dummyHash)
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	return s.createSession(ctx, user, userAgent)
}

// Refresh re-validates the durable session, rotates its secret, and mints a
// new access token. Any store error propagates: the caller must force a
// re-login.
func (s *Service) Refresh(ctx context.Context, sessionID, refreshSecret string) (*TokenPair, error) {

	session, err := s.sessionRepo.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.ExpiresAt.Before(time.Now()) {
		return nil, common.ErrSessionExpired
	}

	presented := HashSecretHex(refreshSecret)
	if subtle.ConstantTimeCompare([]byte(presented), []byte(session.TokenHash)) != 1 {
		// A mismatch on a live session can mean a stolen stale copy is being
		// replayed. Kill the session: the legitimate holder re-logs in.
		_ = s.sessionRepo.Revoke(ctx, sessionID)
		return nil, common.ErrInvalidSession
	}

	newSecret, newHash, err := newRefreshSecret()
	if err != nil {
		return nil, common.ErrorInternal
	}

	expiresAt := time.Now().Add(s.refreshTokenValidityDuration)
	if err := s.sessionRepo.Rotate(ctx, sessionID, presented, newHash, expiresAt); err != nil {
		// lost a concurrent rotation race; the winner holds the live secret
		return nil, err
	}

	accessToken, err := s.generateAccessToken(session.UserID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{
		AccessToken:  accessToken,
		SessionID:    sessionID,
		RefreshToken: newSecret,
		UserID:       session.UserID,
		Verified:     user.Verified,
	}, nil
}

// Logout revokes one device session. It is idempotent: revoking an absent
// or already-revoked session succeeds.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Revoke(ctx, sessionID)
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes every session of the user so stolen refresh secrets die with the
// old password.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return common.ErrorInternal
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return common.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	return s.ResetCredentials(ctx, userID, hash)
}

// RevokeAll revokes every session of the user. Exposed for the password
// reset flow, which must invalidate all prior devices.
func (s *Service) RevokeAll(ctx context.Context, userID string) error {
	return s.sessionRepo.RevokeAll(ctx, userID)
}

// ResetCredentials stores a new password hash and revokes every session of
// the user. With a SQL backend both writes commit in one transaction, so a
// crash can never leave live sessions behind a new password.
func (s *Service) ResetCredentials(ctx context.Context, userID, passwordHash string) error {

	if s.db != nil {
		err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			if err := users.NewPostgresRepository(tx).UpdatePassword(ctx, userID, passwordHash); err != nil {
				return err
			}
			return NewPostgresRepository(tx).RevokeAll(ctx, userID)
		})
		if err != nil {
			return common.ErrorInternal
		}
		return nil
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return common.ErrorInternal
	}
	return s.sessionRepo.RevokeAll(ctx, userID)
}

// --- helpers below ---

// dummyHash is a bcrypt hash of an unguessable value, compared against when
// the login is unknown to equalize response timing.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func (s *Service) findByLogin(ctx context.Context, login string) (*models.User, error) {
	if strings.Contains(login, "@") {
		return s.userRepo.GetByEmail(ctx, login)
	}
	return s.userRepo.GetByLogin(ctx, login)
}

func (s *Service) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, auth.KindAccess, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *Service) createSession(ctx context.Context, user *models.User, userAgent string) (*TokenPair, error) {

	secret, hash, err := newRefreshSecret()
	if err != nil {
		return nil, common.ErrorInternal
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: hash,
		UserAgent: userAgent,
		ExpiresAt: time.Now().Add(s.refreshTokenValidityDuration),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, common.ErrorInternal
	}

	accessToken, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{
		AccessToken:  accessToken,
		SessionID:    session.ID,
		RefreshToken: secret,
		UserID:       user.ID,
		Verified:     user.Verified,
	}, nil
}
