package memory

import (
	"context"
	"sync"

	"cinescope-backend/internal/domain"
)

// TransactionManager runs transactions one at a time. There is no rollback;
// callers only write as the last step of fn.
type TransactionManager struct {
	mu sync.Mutex
}

func NewTransactionManager() domain.TransactionManager {
	return &TransactionManager{}
}

func (tm *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return fn(ctx)
}
