package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/tactic/pkg/adapters/memory"
	"github.com/aretw0/tactic/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("agent-%d", i)
		_ = mgr.store.Save(ctx, id, domain.NewSnapshot(id))
		_, _ = mgr.Load(ctx, id)
		_ = mgr.Delete(ctx, id)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("memory leak detected: %d locks remaining after Delete", lockCount)
	}
}
