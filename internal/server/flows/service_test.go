package flows

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dkotlyar/passfort/internal/common"
	"github.com/dkotlyar/passfort/internal/logging"
	"github.com/dkotlyar/passfort/internal/server/config"
	"github.com/dkotlyar/passfort/internal/server/ephemeral"
	"github.com/dkotlyar/passfort/internal/server/hashing"
	"github.com/dkotlyar/passfort/internal/server/models"
	"github.com/dkotlyar/passfort/internal/server/notifier"
	"github.com/dkotlyar/passfort/internal/server/sessions"
	"github.com/dkotlyar/passfort/internal/server/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type sentMessage struct {
	address string
	kind    notifier.TemplateKind
	payload map[string]string
}

type fakeNotifier struct {
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, address string, kind notifier.TemplateKind, payload map[string]string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{address: address, kind: kind, payload: payload})
	return nil
}

// lastToken extracts the ephemeral token from the link of the last sent message.
func (f *fakeNotifier) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent, "expected at least one notification")
	link := f.sent[len(f.sent)-1].payload["link"]
	i := strings.LastIndex(link, "token=")
	require.GreaterOrEqual(t, i, 0, "link must carry a token: %s", link)
	return link[i+len("token="):]
}

type fixture struct {
	svc        *Service
	sessionSvc *sessions.Service
	userSvc    *users.Service
	userRepo   *users.InMemoryRepository
	tokenRepo  *ephemeral.InMemoryRepository
	notify     *fakeNotifier
	user       *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"

	hasher := hashing.NewBcryptHasher(bcrypt.MinCost)
	userRepo := users.NewInMemoryRepository()
	sessionRepo := sessions.NewInMemoryRepository()
	tokenRepo := ephemeral.NewInMemoryRepository()
	notify := &fakeNotifier{}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	sessionSvc := sessions.NewService(nil, userRepo, sessionRepo, hasher, cfg)
	userSvc := users.NewService(userRepo, hasher)

	f := &fixture{
		svc:        NewService(userRepo, tokenRepo, notify, hasher, sessionSvc, logger, cfg),
		sessionSvc: sessionSvc,
		userSvc:    userSvc,
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		notify:     notify,
	}

	user, err := userSvc.Register(context.Background(), "alice@example.com", "alice", "pw123")
	require.NoError(t, err)
	f.user = user
	return f
}

func TestVerification_FullFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestVerification(ctx, f.user.ID, f.user.Email))

	require.Len(t, f.notify.sent, 1)
	assert.Equal(t, "alice@example.com", f.notify.sent[0].address)
	assert.Equal(t, notifier.KindVerification, f.notify.sent[0].kind)

	token := f.notify.lastToken(t)
	require.NoError(t, f.svc.ConfirmVerification(ctx, token, "alice@example.com"))

	user, err := f.userRepo.GetByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, user.Verified)

	// the token is single-use
	err = f.svc.ConfirmVerification(ctx, token, "alice@example.com")
	assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)
}

func TestConfirmVerification_EmailMismatchBurnsToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestVerification(ctx, f.user.ID, f.user.Email))
	token := f.notify.lastToken(t)

	err := f.svc.ConfirmVerification(ctx, token, "mallory@example.com")
	assert.ErrorIs(t, err, common.ErrEmailMismatch)

	user, err := f.userRepo.GetByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.False(t, user.Verified)

	// redemption consumed the token; a retry with the right email fails too
	err = f.svc.ConfirmVerification(ctx, token, "alice@example.com")
	assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)
}

func TestConfirmVerification_RejectsResetToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, f.user.Email))
	token := f.notify.lastToken(t)

	err := f.svc.ConfirmVerification(ctx, token, f.user.Email)
	assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)
}

func TestRequestReset_UnknownEmailIsSilent(t *testing.T) {
	f := newFixture(t)

	err := f.svc.RequestReset(context.Background(), "unknown@example.com")
	require.NoError(t, err)

	assert.Empty(t, f.notify.sent, "no notification for unknown accounts")
	assert.Equal(t, 0, f.tokenRepo.Len(), "no token for unknown accounts")
}

func TestReset_FullFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// two logged-in devices that must die with the reset
	phone, err := f.sessionSvc.Login(ctx, "alice", "pw123", "phone")
	require.NoError(t, err)
	laptop, err := f.sessionSvc.Login(ctx, "alice", "pw123", "laptop")
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestReset(ctx, "alice@example.com"))
	require.Len(t, f.notify.sent, 1)
	assert.Equal(t, notifier.KindPasswordReset, f.notify.sent[0].kind)
	token := f.notify.lastToken(t)

	require.NoError(t, f.svc.CompleteReset(ctx, token, "alice@example.com", "newpw456"))

	// password changed
	_, err = f.sessionSvc.Login(ctx, "alice", "pw123", "")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = f.sessionSvc.Login(ctx, "alice", "newpw456", "")
	assert.NoError(t, err)

	// all prior sessions revoked
	_, err = f.sessionSvc.Refresh(ctx, phone.SessionID, phone.RefreshToken)
	assert.ErrorIs(t, err, common.ErrSessionNotFound)
	_, err = f.sessionSvc.Refresh(ctx, laptop.SessionID, laptop.RefreshToken)
	assert.ErrorIs(t, err, common.ErrSessionNotFound)

	// the token is single-use
	err = f.svc.CompleteReset(ctx, token, "alice@example.com", "again")
	assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)
}

func TestRequestReset_NotifierFailureKeepsToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.notify.err = errors.New("smtp down")
	require.NoError(t, f.svc.RequestReset(ctx, "alice@example.com"))

	// the token was written despite the bounced notification
	assert.Equal(t, 1, f.tokenRepo.Len())
}

func TestReset_TokenExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	now := time.Now()
	f.tokenRepo.Now = func() time.Time { return now }

	require.NoError(t, f.svc.RequestReset(ctx, "alice@example.com"))
	token := f.notify.lastToken(t)

	f.tokenRepo.Now = func() time.Time { return now.Add(31 * time.Minute) }

	err := f.svc.CompleteReset(ctx, token, "alice@example.com", "newpw456")
	assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)
}
