package ephemeral

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dkotlyar/passfort/internal/common"
	"github.com/dkotlyar/passfort/internal/server/models"
)

func TestTake_SucceedsExactlyOnce(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	value := &models.EphemeralToken{Purpose: models.PurposeVerifyEmail, UserID: "u1", Email: "a@b"}
	if err := repo.Put(ctx, "k1", value, time.Hour); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := repo.Take(ctx, "k1")
	if err != nil {
		t.Fatalf("first Take error: %v", err)
	}
	if got.UserID != "u1" || got.Purpose != models.PurposeVerifyEmail {
		t.Fatalf("unexpected value: %+v", got)
	}

	_, err = repo.Take(ctx, "k1")
	if !errors.Is(err, common.ErrInvalidOrExpiredToken) {
		t.Fatalf("second Take: want common.ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestTake_ExpiredBehavesAsAbsent(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	now := time.Now()
	repo.Now = func() time.Time { return now }

	if err := repo.Put(ctx, "k1", &models.EphemeralToken{UserID: "u1"}, time.Minute); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	// advance the clock past the TTL without redeeming
	repo.Now = func() time.Time { return now.Add(2 * time.Minute) }

	_, err := repo.Take(ctx, "k1")
	if !errors.Is(err, common.ErrInvalidOrExpiredToken) {
		t.Fatalf("want common.ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestPurge_RemovesOnlyExpiredEntries(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	now := time.Now()
	repo.Now = func() time.Time { return now }

	if err := repo.Put(ctx, "short", &models.EphemeralToken{UserID: "u1"}, time.Minute); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := repo.Put(ctx, "long", &models.EphemeralToken{UserID: "u1"}, time.Hour); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	repo.Now = func() time.Time { return now.Add(2 * time.Minute) }

	if err := repo.Purge(ctx); err != nil {
		t.Fatalf("Purge error: %v", err)
	}
	if n := repo.Len(); n != 1 {
		t.Fatalf("expected 1 surviving entry, got %d", n)
	}
	if _, err := repo.Take(ctx, "long"); err != nil {
		t.Fatalf("live entry must survive the purge: %v", err)
	}
}

func TestTake_SingleWinnerUnderConcurrency(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if err := repo.Put(ctx, "k1", &models.EphemeralToken{UserID: "u1"}, time.Hour); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	const callers = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Take(ctx, "k1"); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	if n := len(wins); n != 1 {
		t.Fatalf("expected exactly one winner, got %d", n)
	}
}
