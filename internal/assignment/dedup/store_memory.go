package dedup

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"crm/internal/assignment/models"
	id "crm/pkg/domain"
)

type record struct {
	target string
	at     time.Time
	gen    uint64
}

type expiry struct {
	at             time.Time
	conversationID id.ConversationID
	gen            uint64
}

// expiryHeap is a min-heap on expiry time.
type expiryHeap []expiry

func (h expiryHeap) Len() int           { return len(h) }
func (h expiryHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h expiryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap) Push(x any)        { *h = append(*h, x.(expiry)) }
func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// InMemoryStore keeps the latest operation per conversation for one
// process. Expired records are purged through a heap, so each call costs
// O(log n) amortized.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[id.ConversationID]record
	expiry  expiryHeap
	gen     uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.ConversationID]record)}
}

func (s *InMemoryStore) CheckAndRecord(_ context.Context, op models.Operation, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := op.Timestamp
	s.purge(now)

	target := op.Target()
	if prev, ok := s.records[op.ConversationID]; ok {
		if now.Sub(prev.at) < window && prev.target == target {
			return true, nil
		}
	}

	s.gen++
	s.records[op.ConversationID] = record{target: target, at: now, gen: s.gen}
	heap.Push(&s.expiry, expiry{at: now.Add(window), conversationID: op.ConversationID, gen: s.gen})
	return false, nil
}

// purge drops records whose window has closed. Heap entries for records
// that were replaced since are discarded without touching the map.
func (s *InMemoryStore) purge(now time.Time) {
	for s.expiry.Len() > 0 && !s.expiry[0].at.After(now) {
		e := heap.Pop(&s.expiry).(expiry)
		if r, ok := s.records[e.conversationID]; ok && r.gen == e.gen {
			delete(s.records, e.conversationID)
		}
	}
}

func (s *InMemoryStore) Clear(_ context.Context, conversationID id.ConversationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, conversationID)
	return nil
}

// Len reports how many conversations currently hold a record.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
