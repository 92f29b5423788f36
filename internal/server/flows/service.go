// Package flows orchestrates the email-verification and password-reset
// flows: issuing single-use tokens, dispatching notifications, and redeeming
// tokens exactly once.
package flows

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/dkotlyar/passfort/internal/common"
	"github.com/dkotlyar/passfort/internal/logging"
	"github.com/dkotlyar/passfort/internal/server/config"
	"github.com/dkotlyar/passfort/internal/server/ephemeral"
	"github.com/dkotlyar/passfort/internal/server/hashing"
	"github.com/dkotlyar/passfort/internal/server/models"
	"github.com/dkotlyar/passfort/internal/server/notifier"
	"github.com/dkotlyar/passfort/internal/server/users"
)

// CredentialResetter stores a new password hash and revokes every session of
// the user in one step. A completed password reset means all prior devices
// are untrusted.
type CredentialResetter interface {
	ResetCredentials(ctx context.Context, userID, passwordHash string) error
}

// Service implements both flows on top of the ephemeral token store.
type Service struct {
	userRepo             users.Repository
	tokenRepo            ephemeral.Repository
	notify               notifier.Notifier
	hasher               hashing.Hasher
	resetter             CredentialResetter
	logger               logging.Logger
	baseURL              string
	verificationTokenTTL time.Duration
	resetTokenTTL        time.Duration
}

func NewService(
	userRepo users.Repository,
	tokenRepo ephemeral.Repository,
	notify notifier.Notifier,
	hasher hashing.Hasher,
	resetter CredentialResetter,
	logger logging.Logger,
	cfg *config.Config,
) *Service {
	return &Service{
		userRepo:             userRepo,
		tokenRepo:            tokenRepo,
		notify:               notify,
		hasher:               hasher,
		resetter:             resetter,
		logger:               logger.With("module", "flows"),
		baseURL:              cfg.BaseURL,
		verificationTokenTTL: cfg.VerificationTokenTTL,
		resetTokenTTL:        cfg.ResetTokenTTL,
	}
}

// RequestVerification issues a single-use verification token for the user
// and asks the notifier to deliver it. A delivery failure does not undo the
// token write: the user can re-request if the message bounced.
func (s *Service) RequestVerification(ctx context.Context, userID, email string) error {

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}

	value := &models.EphemeralToken{
		Purpose: models.PurposeVerifyEmail,
		UserID:  userID,
		Email:   email,
	}
	if err := s.tokenRepo.Put(ctx, token, value, s.verificationTokenTTL); err != nil {
		return common.ErrorInternal
	}

	s.send(ctx, email, notifier.KindVerification, s.baseURL+"/api/auth/verify/confirm?token="+token)
	return nil
}

// ConfirmVerification redeems a verification token and flips the user's
// verified flag. The redemption consumes the token even if the presented
// email does not match; a tampered link burns the token.
func (s *Service) ConfirmVerification(ctx context.Context, token, email string) error {

	value, err := s.tokenRepo.Take(ctx, token)
	if err != nil {
		return err
	}
	if value.Purpose != models.PurposeVerifyEmail {
		return common.ErrInvalidOrExpiredToken
	}
	if !emailsMatch(value.Email, email) {
		return common.ErrEmailMismatch
	}

	if err := s.userRepo.SetVerified(ctx, value.UserID, true); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// RequestReset issues a single-use reset token for the account with the
// given email. An unknown email succeeds without issuing anything, so the
// response never reveals whether an account exists.
func (s *Service) RequestReset(ctx context.Context, email string) error {

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return common.ErrorInternal
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}

	value := &models.EphemeralToken{
		Purpose: models.PurposeResetPassword,
		UserID:  user.ID,
		Email:   email,
	}
	if err := s.tokenRepo.Put(ctx, token, value, s.resetTokenTTL); err != nil {
		return common.ErrorInternal
	}

	s.send(ctx, email, notifier.KindPasswordReset, s.baseURL+"/api/auth/reset/confirm?token="+token)
	return nil
}

// CompleteReset redeems a reset token, stores the hash of the new password,
// and revokes every session of the user: a reset implies all prior sessions
// are untrusted.
func (s *Service) CompleteReset(ctx context.Context, token, email, newPassword string) error {

	value, err := s.tokenRepo.Take(ctx, token)
	if err != nil {
		return err
	}
	if value.Purpose != models.PurposeResetPassword {
		return common.ErrInvalidOrExpiredToken
	}
	if !emailsMatch(value.Email, email) {
		return common.ErrEmailMismatch
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	return s.resetter.ResetCredentials(ctx, value.UserID, hash)
}

// --- helpers below ---

func (s *Service) send(ctx context.Context, email string, kind notifier.TemplateKind, link string) {
	if err := s.notify.Send(ctx, email, kind, map[string]string{"link": link}); err != nil {
		s.logger.Warn(ctx, "notification delivery failed", "kind", string(kind), "error", err.Error())
	}
}

func emailsMatch(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
