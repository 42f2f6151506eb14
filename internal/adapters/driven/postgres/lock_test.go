package postgres

import (
	"context"
	"testing"
	"time"
)

func TestHashLockName_Deterministic(t *testing.T) {
	a := hashLockName("index:rebuild")
	b := hashLockName("index:rebuild")
	if a != b {
		t.Errorf("same name hashed to %d and %d", a, b)
	}
}

func TestHashLockName_DistinctNames(t *testing.T) {
	names := []string{"index:rebuild", "index:compact", "rebuild", ""}
	seen := make(map[int64]string, len(names))
	for _, name := range names {
		key := hashLockName(name)
		if prev, ok := seen[key]; ok {
			t.Errorf("names %q and %q collide on key %d", prev, name, key)
		}
		seen[key] = name
	}
}

func TestAdvisoryLock_ExtendIsNoOp(t *testing.T) {
	// advisory locks are connection-scoped; Extend must succeed without
	// touching the database
	lock := NewAdvisoryLock(nil)
	if err := lock.Extend(context.Background(), "index:rebuild", 30*time.Second); err != nil {
		t.Errorf("unexpected extend error: %v", err)
	}
}
