package books

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rinkore1/BookServer/internal/breaker"
)

type fakeRepo struct {
	books map[string]Book
	order []string

	failReads bool
	getCalls  int
	listCalls int
}

var errStoreDown = errors.New("store down")

func newFakeRepo(books ...Book) *fakeRepo {
	r := &fakeRepo{books: make(map[string]Book)}
	for _, b := range books {
		r.books[b.ID] = b
		r.order = append(r.order, b.ID)
	}
	return r
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Book, error) {
	r.getCalls++
	if r.failReads {
		return nil, errStoreDown
	}
	b, ok := r.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *fakeRepo) List(ctx context.Context, offset, limit int) ([]Book, error) {
	r.listCalls++
	if r.failReads {
		return nil, errStoreDown
	}
	result := make([]Book, 0)
	for i := offset; i < len(r.order) && len(result) < limit; i++ {
		result = append(result, r.books[r.order[i]])
	}
	return result, nil
}

func (r *fakeRepo) SearchByTitle(ctx context.Context, keyword string, offset, limit int) ([]Book, error) {
	if r.failReads {
		return nil, errStoreDown
	}
	result := make([]Book, 0)
	for _, id := range r.order {
		b := r.books[id]
		if containsFold(b.Title, keyword) {
			result = append(result, b)
		}
	}
	if offset >= len(result) {
		return []Book{}, nil
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeRepo) TopByPopularity(ctx context.Context, limit int) ([]Book, error) {
	if r.failReads {
		return nil, errStoreDown
	}
	return r.List(ctx, 0, limit)
}

func (r *fakeRepo) Random(ctx context.Context, limit int) ([]Book, error) {
	if r.failReads {
		return nil, errStoreDown
	}
	// deterministic "random": newest first
	result := make([]Book, 0, limit)
	for i := len(r.order) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, r.books[r.order[i]])
	}
	return result, nil
}

func (r *fakeRepo) Create(ctx context.Context, b *Book) (string, error) {
	if r.failReads {
		// writes fail alongside reads when the store is down
		return "", errStoreDown
	}
	id := b.Title + "-id"
	r.books[id] = *b
	r.order = append(r.order, id)
	return id, nil
}

func (r *fakeRepo) Update(ctx context.Context, b *Book) error {
	if r.failReads {
		return errStoreDown
	}
	if _, ok := r.books[b.ID]; !ok {
		return ErrNotFound
	}
	r.books[b.ID] = *b
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	if r.failReads {
		return errStoreDown
	}
	if _, ok := r.books[id]; !ok {
		return ErrNotFound
	}
	delete(r.books, id)
	return nil
}

func containsFold(s, sub string) bool {
	if sub == "" {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		match := true
		for j := 0; j < len(sub); j++ {
			a, b := s[i+j], sub[j]
			if 'A' <= a && a <= 'Z' {
				a += 'a' - 'A'
			}
			if 'A' <= b && b <= 'Z' {
				b += 'a' - 'A'
			}
			if a != b {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func testOptions() breaker.Options {
	return breaker.Options{
		FailureRateThreshold: 0.5,
		MinimumCalls:         3,
		WaitOpen:             10 * time.Second,
		HalfOpenCalls:        1,
		WindowSize:           10,
	}
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(Book{ID: "b1", Title: "Dune", Author: "Herbert"})
	svc := NewService(repo, testOptions())

	b, err := svc.GetByID(ctx, "b1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b == nil || b.Title != "Dune" {
		t.Fatalf("unexpected book: %+v", b)
	}

	if _, err := svc.GetByID(ctx, "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for a clean miss, got %v", err)
	}
}

func TestService_ReadFailureServesFallback(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(Book{ID: "b1", Title: "Dune"})
	repo.failReads = true
	svc := NewService(repo, testOptions())

	b, err := svc.GetByID(ctx, "b1")
	if err != nil {
		t.Fatalf("expected masked failure, got error %v", err)
	}
	if b != nil {
		t.Fatalf("expected nil fallback, got %+v", b)
	}

	list, err := svc.List(ctx, 0, 10)
	if err != nil {
		t.Fatalf("expected masked failure, got error %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty fallback list, got %d items", len(list))
	}
}

func TestService_BreakerOpensAndShortCircuits(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.failReads = true
	svc := NewService(repo, testOptions())

	// three failures reach MinimumCalls at 100% failure rate
	for i := 0; i < 3; i++ {
		svc.List(ctx, 0, 10)
	}
	callsWhenOpened := repo.listCalls

	// subsequent reads are short-circuited: fallback without a repo call
	for i := 0; i < 5; i++ {
		list, err := svc.List(ctx, 0, 10)
		if err != nil {
			t.Fatalf("expected fallback, got %v", err)
		}
		if len(list) != 0 {
			t.Fatalf("expected empty fallback, got %d items", len(list))
		}
	}
	if repo.listCalls != callsWhenOpened {
		t.Fatalf("expected no repo calls while open, got %d extra",
			repo.listCalls-callsWhenOpened)
	}

	// the GetByID breaker is independent of the List breaker
	svc.GetByID(ctx, "b1")
	if repo.getCalls != 1 {
		t.Fatalf("expected GetByID to still reach the repo, calls=%d", repo.getCalls)
	}
}

func TestService_WriteFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.failReads = true
	svc := NewService(repo, testOptions())

	if _, err := svc.Add(ctx, &Book{Title: "Dune"}); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected write error to surface, got %v", err)
	}
	if err := svc.Update(ctx, &Book{ID: "b1"}); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected write error to surface, got %v", err)
	}
	if err := svc.Delete(ctx, "b1"); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected write error to surface, got %v", err)
	}
}

func TestService_UpdateMissingBook(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo(), testOptions())

	if err := svc.Update(ctx, &Book{ID: "missing"}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_PreferencesForUser(t *testing.T) {
	svc := NewService(newFakeRepo(), testOptions())

	prefs := svc.PreferencesForUser("user1")
	if len(prefs) == 0 {
		t.Fatal("expected stored preferences for a known user")
	}

	if got := svc.PreferencesForUser("stranger"); len(got) != 0 {
		t.Fatalf("expected no preferences for an unknown user, got %v", got)
	}
}

func TestService_RecommendPadsWithRandom(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(
		Book{ID: "b1", Title: "Learning Go"},
		Book{ID: "b2", Title: "The Go Programming Language"},
		Book{ID: "b3", Title: "Cooking for Two"},
		Book{ID: "b4", Title: "Gardening"},
	)
	svc := NewService(repo, testOptions())

	result, err := svc.Recommend(ctx, []string{"go"}, 4)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(result) != 4 {
		t.Fatalf("expected 4 recommendations, got %d", len(result))
	}

	// preference matches come first
	if !containsFold(result[0].Title, "go") || !containsFold(result[1].Title, "go") {
		t.Fatalf("expected go titles first, got %q, %q", result[0].Title, result[1].Title)
	}

	// no duplicates after random padding
	seen := make(map[string]bool)
	for _, b := range result {
		if seen[b.ID] {
			t.Fatalf("duplicate recommendation %s", b.ID)
		}
		seen[b.ID] = true
	}
}
