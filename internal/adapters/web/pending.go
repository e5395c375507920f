package web

import (
	"context"
	"sync"
	"time"

	"procurement-tracker/internal/ai"
)

// pendingDraft is a receipt draft held server-side until the user confirms or discards it.
type pendingDraft struct {
	Draft     ai.ReceiptDraft
	CreatedAt time.Time
}

const pendingTTL = 15 * time.Minute

// pendingStore is a thread-safe in-memory store with TTL expiry.
type pendingStore struct {
	mu     sync.Mutex
	drafts map[string]pendingDraft
}

func newPendingStore() *pendingStore {
	return &pendingStore{drafts: make(map[string]pendingDraft)}
}

func (s *pendingStore) put(token string, d ai.ReceiptDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[token] = pendingDraft{Draft: d, CreatedAt: time.Now()}
}

// take returns the draft for token and removes it.
func (s *pendingStore) take(token string) (ai.ReceiptDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.drafts[token]
	if !ok {
		return ai.ReceiptDraft{}, false
	}
	delete(s.drafts, token)
	if time.Since(p.CreatedAt) > pendingTTL {
		return ai.ReceiptDraft{}, false
	}
	return p.Draft, true
}

// startPurge starts a background goroutine that evicts expired entries every 5 minutes.
func (s *pendingStore) startPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				for token, p := range s.drafts {
					if time.Since(p.CreatedAt) > pendingTTL {
						delete(s.drafts, token)
					}
				}
				s.mu.Unlock()
			}
		}
	}()
}
