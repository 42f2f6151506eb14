package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const rebuildLock = "index:rebuild"

func setupLockTest(t *testing.T) (*miniredis.Miniredis, *Lock) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, NewLock(client)
}

func mustAcquire(t *testing.T, l *Lock, name string, ttl time.Duration) {
	t.Helper()
	acquired, err := l.Acquire(context.Background(), name, ttl)
	if err != nil {
		t.Fatalf("unexpected acquire error: %v", err)
	}
	if !acquired {
		t.Fatalf("expected to acquire %q", name)
	}
}

func TestLock_OwnersAreDistinct(t *testing.T) {
	mr, lock := setupLockTest(t)
	other := NewLock(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	if lock.OwnerID() == "" {
		t.Fatal("expected non-empty owner ID")
	}
	if lock.OwnerID() == other.OwnerID() {
		t.Errorf("two instances share owner ID %s", lock.OwnerID())
	}
}

func TestLock_SecondInstanceCannotAcquireHeldLock(t *testing.T) {
	mr, lock := setupLockTest(t)
	other := NewLock(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	mustAcquire(t, lock, rebuildLock, 10*time.Second)

	acquired, err := other.Acquire(context.Background(), rebuildLock, 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected second instance to be rejected while rebuild runs")
	}
}

func TestLock_AcquireIsNotReentrant(t *testing.T) {
	_, lock := setupLockTest(t)
	mustAcquire(t, lock, rebuildLock, 10*time.Second)

	acquired, err := lock.Acquire(context.Background(), rebuildLock, 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected re-acquire by the same owner to fail")
	}
}

func TestLock_ReleaseFreesTheLock(t *testing.T) {
	_, lock := setupLockTest(t)
	ctx := context.Background()

	mustAcquire(t, lock, rebuildLock, 10*time.Second)
	if err := lock.Release(ctx, rebuildLock); err != nil {
		t.Fatalf("unexpected release error: %v", err)
	}
	mustAcquire(t, lock, rebuildLock, 10*time.Second)
}

func TestLock_ReleaseUnheldIsNoError(t *testing.T) {
	_, lock := setupLockTest(t)

	if err := lock.Release(context.Background(), rebuildLock); err != nil {
		t.Errorf("unexpected error releasing unheld lock: %v", err)
	}
}

func TestLock_NonOwnerCannotRelease(t *testing.T) {
	mr, lock := setupLockTest(t)
	other := NewLock(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	mustAcquire(t, lock, rebuildLock, 10*time.Second)

	if err := other.Release(ctx, rebuildLock); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	acquired, err := other.Acquire(ctx, rebuildLock, 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("release by a non-owner must not free the lock")
	}
}

func TestLock_ExpiresAfterTTL(t *testing.T) {
	mr, lock := setupLockTest(t)

	mustAcquire(t, lock, rebuildLock, 5*time.Second)
	mr.FastForward(6 * time.Second)

	// a crashed holder's lock frees itself once the TTL lapses
	mustAcquire(t, lock, rebuildLock, 5*time.Second)
}

func TestLock_ExtendPushesOutExpiry(t *testing.T) {
	mr, lock := setupLockTest(t)
	ctx := context.Background()

	mustAcquire(t, lock, rebuildLock, 5*time.Second)
	if err := lock.Extend(ctx, rebuildLock, 30*time.Second); err != nil {
		t.Fatalf("unexpected extend error: %v", err)
	}

	mr.FastForward(6 * time.Second)
	acquired, err := lock.Acquire(ctx, rebuildLock, 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected the extended lock to outlive the original TTL")
	}
}

func TestLock_ExtendUnheldFails(t *testing.T) {
	_, lock := setupLockTest(t)

	if err := lock.Extend(context.Background(), rebuildLock, 10*time.Second); err == nil {
		t.Error("expected error extending a lock that is not held")
	}
}

func TestLock_NonOwnerCannotExtend(t *testing.T) {
	mr, lock := setupLockTest(t)
	other := NewLock(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	mustAcquire(t, lock, rebuildLock, 10*time.Second)

	if err := other.Extend(context.Background(), rebuildLock, 20*time.Second); err == nil {
		t.Error("expected error when a non-owner extends")
	}
}

func TestLock_IndependentNames(t *testing.T) {
	_, lock := setupLockTest(t)

	mustAcquire(t, lock, rebuildLock, 10*time.Second)
	mustAcquire(t, lock, "index:compact", 10*time.Second)
}

func TestLock_Ping(t *testing.T) {
	_, lock := setupLockTest(t)

	if err := lock.Ping(context.Background()); err != nil {
		t.Errorf("unexpected ping error: %v", err)
	}
}
