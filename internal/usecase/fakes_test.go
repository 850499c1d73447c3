package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"

	"NewsCredibility/internal/domain"
)

type memoryStore struct {
	mu       sync.Mutex
	articles map[string]*domain.ArticleSnapshot
	users    map[string]*domain.UserHistory
	audit    []domain.AuditEntry
	applyErr error
	// afterClear runs once ClearOverride has released the store.
	afterClear func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		articles: map[string]*domain.ArticleSnapshot{},
		users:    map[string]*domain.UserHistory{},
	}
}

func (s *memoryStore) put(a domain.ArticleSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[a.ID] = &a
}

func (s *memoryStore) get(id string) domain.ArticleSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.articles[id]
}

func (s *memoryStore) auditFor(id string) []domain.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AuditEntry
	for _, a := range s.audit {
		if a.ArticleID == id {
			out = append(out, a)
		}
	}
	return out
}

func (s *memoryStore) LoadArticle(_ context.Context, id string) (domain.ArticleSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return domain.ArticleSnapshot{}, domain.ErrArticleNotFound
	}
	out := *a
	out.Claims = append([]domain.Claim(nil), a.Claims...)
	return out, nil
}

func (s *memoryStore) ApplyScore(_ context.Context, u domain.ScoreUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applyErr != nil {
		return s.applyErr
	}
	a, ok := s.articles[u.ArticleID]
	if !ok {
		return domain.ErrArticleNotFound
	}
	a.Existing = u.Breakdown
	a.Lock = u.Lock
	a.Scored = true
	if len(a.Claims) == 0 {
		a.Claims = append(a.Claims, u.NewClaims...)
	}
	s.audit = append(s.audit, u.Audit)
	return nil
}

func (s *memoryStore) ApplyOverride(_ context.Context, id string, o domain.Override, audit domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return domain.ErrArticleNotFound
	}
	a.Override = &o
	a.Existing.Overall = o.Score
	a.Existing.Status = o.Status
	s.audit = append(s.audit, audit)
	return nil
}

func (s *memoryStore) ClearOverride(_ context.Context, id string) error {
	if err := s.mutate(id, func(a *domain.ArticleSnapshot) { a.Override = nil }); err != nil {
		return err
	}
	if s.afterClear != nil {
		s.afterClear()
	}
	return nil
}

func (s *memoryStore) SetSoftLock(_ context.Context, id, reason string) error {
	return s.mutate(id, func(a *domain.ArticleSnapshot) {
		a.Lock.SoftLocked = true
		a.Lock.Reason = reason
	})
}

func (s *memoryStore) ClearSoftLock(_ context.Context, id string) error {
	return s.mutate(id, func(a *domain.ArticleSnapshot) {
		a.Lock.SoftLocked = false
		a.Lock.Reason = ""
	})
}

func (s *memoryStore) mutate(id string, fn func(*domain.ArticleSnapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return domain.ErrArticleNotFound
	}
	fn(a)
	return nil
}

func (s *memoryStore) ListArticleIDs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.articles))
	for id := range s.articles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *memoryStore) LoadUserHistory(_ context.Context, id string) (domain.UserHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.users[id]
	if !ok {
		return domain.UserHistory{}, domain.ErrUserNotFound
	}
	return *h, nil
}

func (s *memoryStore) UpdateUserCredibility(_ context.Context, id string, score float64, byCategory map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	h.User.CredibilityScore = score
	h.User.CategoryCredibility = byCategory
	return nil
}

func (s *memoryStore) ListUserIDs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *recordingNotifier) PublishAlert(_ context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

var errStorageDown = errors.New("storage down")
