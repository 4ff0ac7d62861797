package docstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAssignsIDAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "businesses", Fields{"name": "Hazara House Restaurant", "rating": 4.8})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id == "" {
		t.Fatal("Insert should assign an id")
	}

	got, err := s.Get(ctx, "businesses", id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != id {
		t.Errorf("ID = %q, want %q", got.ID, id)
	}
	if got.Fields.String("name") != "Hazara House Restaurant" {
		t.Errorf("name = %q", got.Fields.String("name"))
	}
	if got.Fields.Float("rating") != 4.8 {
		t.Errorf("rating = %v, want 4.8", got.Fields.Float("rating"))
	}
}

func TestGetNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.Get(context.Background(), "blogs", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListInsertionOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if _, err := s.Insert(ctx, "businesses", Fields{"name": name}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	// Other collections must not leak in.
	if _, err := s.Insert(ctx, "blogs", Fields{"title": "x"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	docs, err := s.List(ctx, "businesses")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("List count = %d, want 3", len(docs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got := docs[i].Fields.String("name"); got != want {
			t.Errorf("docs[%d].name = %q, want %q", i, got, want)
		}
	}
}

func TestListOrderByDesc(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, d := range []string{"2025-01-02", "2025-03-15", "2024-12-31"} {
		if _, err := s.Insert(ctx, "blogs", Fields{"date": d}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	docs, err := s.List(ctx, "blogs", OrderBy("date", true))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"2025-03-15", "2025-01-02", "2024-12-31"}
	for i := range want {
		if got := docs[i].Fields.String("date"); got != want[i] {
			t.Errorf("docs[%d].date = %q, want %q", i, got, want[i])
		}
	}
}

func TestListRejectsBadField(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.List(context.Background(), "blogs", OrderBy("date') --", true)); err == nil {
		t.Error("expected error for invalid field name")
	}
}

func TestUpdateMergesFields(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, _ := s.Insert(ctx, "blogs", Fields{"title": "Old", "views": 7, "date": "2025-03-15"})
	if err := s.Update(ctx, "blogs", id, Fields{"title": "New"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ := s.Get(ctx, "blogs", id)
	if got.Fields.String("title") != "New" {
		t.Errorf("title = %q, want New", got.Fields.String("title"))
	}
	if got.Fields.Int("views") != 7 {
		t.Errorf("views = %d, want 7 (untouched)", got.Fields.Int("views"))
	}
	if got.Fields.String("date") != "2025-03-15" {
		t.Errorf("date = %q, want untouched", got.Fields.String("date"))
	}
}

func TestUpdateMissing(t *testing.T) {
	s := setupTestStore(t)
	err := s.Update(context.Background(), "blogs", "nope", Fields{"title": "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, _ := s.Insert(ctx, "businesses", Fields{"name": "x"})
	if err := s.Delete(ctx, "businesses", id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "businesses", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("document should be gone, got %v", err)
	}
	if err := s.Delete(ctx, "businesses", id); err != nil {
		t.Errorf("deleting a missing document should not error, got %v", err)
	}
}

func TestIncrement(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, _ := s.Insert(ctx, "blogs", Fields{"title": "x"})
	for i := 0; i < 3; i++ {
		if err := s.Increment(ctx, "blogs", id, "views"); err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
	}
	got, _ := s.Get(ctx, "blogs", id)
	if got.Fields.Int("views") != 3 {
		t.Errorf("views = %d, want 3", got.Fields.Int("views"))
	}
	if err := s.Increment(ctx, "blogs", "missing", "views"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIncrementConcurrent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.Ensure(ctx, "analytics", "stats", Fields{"pageViews": 0}); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Increment(ctx, "analytics", "stats", "pageViews"); err != nil {
				t.Errorf("Increment failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := s.Get(ctx, "analytics", "stats")
	if got.Fields.Int("pageViews") != 20 {
		t.Errorf("pageViews = %d, want 20", got.Fields.Int("pageViews"))
	}
}

func TestIncrementAllIsAtomic(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, _ := s.Insert(ctx, "blogs", Fields{"views": 1})
	s.Ensure(ctx, "analytics", "stats", Fields{"blogViews": 10})

	err := s.IncrementAll(ctx,
		Counter{Collection: "blogs", ID: id, Field: "views"},
		Counter{Collection: "analytics", ID: "stats", Field: "blogViews"},
	)
	if err != nil {
		t.Fatalf("IncrementAll failed: %v", err)
	}

	// Second counter targets a missing document: nothing may move.
	err = s.IncrementAll(ctx,
		Counter{Collection: "blogs", ID: id, Field: "views"},
		Counter{Collection: "analytics", ID: "missing", Field: "blogViews"},
	)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	post, _ := s.Get(ctx, "blogs", id)
	stats, _ := s.Get(ctx, "analytics", "stats")
	if post.Fields.Int("views") != 2 {
		t.Errorf("views = %d, want 2", post.Fields.Int("views"))
	}
	if stats.Fields.Int("blogViews") != 11 {
		t.Errorf("blogViews = %d, want 11", stats.Fields.Int("blogViews"))
	}
}

func TestEnsureKeepsExisting(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.Ensure(ctx, "analytics", "stats", Fields{"pageViews": 0, "blogViews": 0})
	s.Increment(ctx, "analytics", "stats", "pageViews")
	s.Ensure(ctx, "analytics", "stats", Fields{"pageViews": 0, "blogViews": 0})

	got, _ := s.Get(ctx, "analytics", "stats")
	if got.Fields.Int("pageViews") != 1 {
		t.Errorf("pageViews = %d, want 1", got.Fields.Int("pageViews"))
	}
}

func TestSetReplaces(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.Set(ctx, "users", "admin@example.com", Fields{"email": "admin@example.com", "old": true})
	s.Set(ctx, "users", "admin@example.com", Fields{"email": "admin@example.com"})
	got, err := s.Get(ctx, "users", "admin@example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, ok := got.Fields["old"]; ok {
		t.Error("Set should replace the whole document")
	}
}

func TestRunOnce(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	calls := 0
	fn := func(ctx context.Context, tx *Tx) error {
		calls++
		_, err := tx.Insert(ctx, "businesses", Fields{"name": "x"})
		return err
	}
	ran, err := s.RunOnce(ctx, "seed:businesses", fn)
	if err != nil || !ran {
		t.Fatalf("first RunOnce = %v, %v; want true, nil", ran, err)
	}
	ran, err = s.RunOnce(ctx, "seed:businesses", fn)
	if err != nil || ran {
		t.Fatalf("second RunOnce = %v, %v; want false, nil", ran, err)
	}
	if calls != 1 {
		t.Errorf("fn ran %d times, want 1", calls)
	}
	marked, _ := s.Marked(ctx, "seed:businesses")
	if !marked {
		t.Error("key should be marked")
	}
}

func TestRunOnceRollsBackOnError(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := s.RunOnce(ctx, "seed:blogs", func(ctx context.Context, tx *Tx) error {
		if _, err := tx.Insert(ctx, "blogs", Fields{"title": "x"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	n, _ := s.Count(ctx, "blogs")
	if n != 0 {
		t.Errorf("Count = %d, want 0 after rollback", n)
	}
	marked, _ := s.Marked(ctx, "seed:blogs")
	if marked {
		t.Error("key must not be marked after a failed run")
	}
}

func TestRunOnceConcurrent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ran, err := s.RunOnce(ctx, "seed:businesses", func(ctx context.Context, tx *Tx) error {
				_, err := tx.Insert(ctx, "businesses", Fields{"name": "x"})
				return err
			})
			if err != nil {
				t.Errorf("RunOnce failed: %v", err)
				return
			}
			if ran {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("winners = %d, want 1", winners)
	}
	n, _ := s.Count(ctx, "businesses")
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestFieldsAccessors(t *testing.T) {
	f := Fields{"a": 4.6, "b": 3, "c": "2.5", "d": true}
	if f.Int("a") != 5 {
		t.Errorf("Int(a) = %d, want 5", f.Int("a"))
	}
	if f.Float("b") != 3 {
		t.Errorf("Float(b) = %v, want 3", f.Float("b"))
	}
	if f.Float("c") != 2.5 {
		t.Errorf("Float(c) = %v, want 2.5", f.Float("c"))
	}
	if f.String("d") != "" {
		t.Errorf("String(d) = %q, want empty", f.String("d"))
	}
	if f.Float("missing") != 0 {
		t.Error("missing key should be zero")
	}
}
