package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cppla/miniblog/models"
)

// newTestStore returns a store with a deterministic clock and id sequence.
func newTestStore(t *testing.T) (*ContentStore, *time.Time) {
	t.Helper()
	s := NewContentStore()
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s, &clock
}

func mustSeed(t *testing.T, s *ContentStore, posts ...models.Post) {
	t.Helper()
	if err := s.Seed(posts...); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func slugs(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}

func TestListDraftAndPublishedExample(t *testing.T) {
	s, _ := newTestStore(t)
	mustSeed(t, s,
		models.Post{ID: "a", Slug: "a", Status: models.StatusPublished, Tags: []string{"x"}, PublishedAt: day(1)},
		models.Post{ID: "b", Slug: "b", Status: models.StatusDraft, Tags: []string{"x"}, PublishedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	)
	ctx := context.Background()

	got, err := s.List(ctx, models.ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if strings.Join(slugs(got), ",") != "a" {
		t.Errorf("List() = %v, want [a]", slugs(got))
	}

	got, _ = s.List(ctx, models.ListFilter{Status: models.StatusDraft})
	if strings.Join(slugs(got), ",") != "b" {
		t.Errorf("List(draft) = %v, want [b]", slugs(got))
	}

	tags, _ := s.ListTags(ctx)
	if strings.Join(tags, ",") != "x" {
		t.Errorf("ListTags() = %v, want [x]", tags)
	}
}

func TestListFilters(t *testing.T) {
	s, _ := newTestStore(t)
	mustSeed(t, s,
		models.Post{ID: "1", Slug: "go-basics", Title: "Go Basics", Summary: "intro", Content: "<p>hello</p>", Tags: []string{"Go", "Intro"}, Status: models.StatusPublished, PublishedAt: day(1)},
		models.Post{ID: "2", Slug: "rust-notes", Title: "Rust", Summary: "ownership explained", Content: "<p>borrow</p>", Tags: []string{"Rust"}, Status: models.StatusPublished, PublishedAt: day(3)},
		models.Post{ID: "3", Slug: "go-channels", Title: "Channels", Summary: "concurrency", Content: "<p>select and HELLO</p>", Tags: []string{"go"}, Status: models.StatusPublished, PublishedAt: day(2)},
		models.Post{ID: "4", Slug: "go-draft", Title: "Hello draft", Tags: []string{"Go"}, Status: models.StatusDraft, PublishedAt: day(4)},
	)

	tests := []struct {
		name   string
		filter models.ListFilter
		want   string
	}{
		{"default is published newest first", models.ListFilter{}, "rust-notes,go-channels,go-basics"},
		{"tag ignores case", models.ListFilter{Tag: "GO"}, "go-channels,go-basics"},
		{"tag is exact", models.ListFilter{Tag: "Intr"}, ""},
		{"search title", models.ListFilter{Search: "rust"}, "rust-notes"},
		{"search summary", models.ListFilter{Search: "OWNERSHIP"}, "rust-notes"},
		{"search content", models.ListFilter{Search: "hello"}, "go-channels,go-basics"},
		{"tag and search intersect", models.ListFilter{Tag: "go", Search: "select"}, "go-channels"},
		{"draft status", models.ListFilter{Status: models.StatusDraft, Tag: "go"}, "go-draft"},
		{"all statuses", models.ListFilter{Status: models.StatusAll, Search: "hello"}, "go-draft,go-channels,go-basics"},
		{"no match", models.ListFilter{Search: "python"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if s := strings.Join(slugs(got), ","); s != tt.want {
				t.Errorf("List(%+v) = %q, want %q", tt.filter, s, tt.want)
			}
		})
	}
}

func TestListSortIsStableOnTies(t *testing.T) {
	s, _ := newTestStore(t)
	mustSeed(t, s,
		models.Post{ID: "1", Slug: "first", Status: models.StatusPublished, PublishedAt: day(5)},
		models.Post{ID: "2", Slug: "second", Status: models.StatusPublished, PublishedAt: day(5)},
		models.Post{ID: "3", Slug: "older", Status: models.StatusPublished, PublishedAt: day(1)},
		models.Post{ID: "4", Slug: "third", Status: models.StatusPublished, PublishedAt: day(5)},
	)
	got, _ := s.List(context.Background(), models.ListFilter{})
	if s := strings.Join(slugs(got), ","); s != "first,second,third,older" {
		t.Errorf("List() = %q, want first,second,third,older", s)
	}
	for i := 1; i < len(got); i++ {
		if got[i].PublishedAt.After(got[i-1].PublishedAt) {
			t.Fatalf("List() not sorted at %d", i)
		}
	}
}

func TestGetBySlugReturnsFirstInsertion(t *testing.T) {
	s, _ := newTestStore(t)
	mustSeed(t, s,
		models.Post{ID: "1", Slug: "dup", Title: "one", PublishedAt: day(1)},
		models.Post{ID: "2", Slug: "dup", Title: "two", PublishedAt: day(9)},
	)
	p, err := s.GetBySlug(context.Background(), "dup")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if p.ID != "1" {
		t.Errorf("GetBySlug() id = %q, want 1", p.ID)
	}
	if _, err := s.GetBySlug(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBySlug(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListTagsPublishedOnlyDistinctSorted(t *testing.T) {
	s, _ := newTestStore(t)
	mustSeed(t, s,
		models.Post{ID: "1", Tags: []string{"b", "a"}, Status: models.StatusPublished},
		models.Post{ID: "2", Tags: []string{"a", "c", "c"}, Status: models.StatusPublished},
		models.Post{ID: "3", Tags: []string{"secret", "a"}, Status: models.StatusDraft},
	)
	tags, err := s.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}
	if got := strings.Join(tags, ","); got != "a,b,c" {
		t.Errorf("ListTags() = %q, want a,b,c", got)
	}
	if !sort.StringsAreSorted(tags) {
		t.Errorf("ListTags() not sorted: %v", tags)
	}
}

func TestListTagsEmptyStore(t *testing.T) {
	s, _ := newTestStore(t)
	tags, err := s.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}
	if tags == nil || len(tags) != 0 {
		t.Errorf("ListTags() = %#v, want empty non-nil slice", tags)
	}
}

func TestCreateThenGetByID(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	fields := models.PostFields{
		Slug:    "new-post",
		Title:   "New",
		Summary: "sum",
		Content: `<script>alert("kept")</script>`,
		Tags:    []string{"x", "x", ""},
		Status:  models.StatusDraft,
	}
	created, err := s.Create(ctx, fields)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID != "id-1" {
		t.Errorf("Create() id = %q, want id-1", created.ID)
	}
	if !created.PublishedAt.Equal(*clock) || !created.UpdatedAt.Equal(*clock) {
		t.Errorf("Create() timestamps = %v/%v, want %v", created.PublishedAt, created.UpdatedAt, *clock)
	}

	got, err := s.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Slug != fields.Slug || got.Title != fields.Title || got.Summary != fields.Summary ||
		got.Content != fields.Content || got.Status != fields.Status {
		t.Errorf("GetByID() = %+v, want fields %+v", got, fields)
	}
	if strings.Join(got.Tags, "|") != "x|x|" {
		t.Errorf("GetByID() tags = %q, want duplicates and empties kept", got.Tags)
	}
}

func TestCreateDoesNotCheckSlugUniqueness(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	a, _ := s.Create(ctx, models.PostFields{Slug: "same"})
	b, _ := s.Create(ctx, models.PostFields{Slug: "same"})
	if a.ID == b.ID {
		t.Fatalf("Create() reused id %q", a.ID)
	}
	all, _ := s.List(ctx, models.ListFilter{Status: models.StatusAll})
	if len(all) != 2 {
		t.Errorf("List(all) len = %d, want 2", len(all))
	}
}

func TestCreateSkipsTakenID(t *testing.T) {
	s, _ := newTestStore(t)
	mustSeed(t, s, models.Post{ID: "id-1"})
	p, err := s.Create(context.Background(), models.PostFields{Slug: "x"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.ID != "id-2" {
		t.Errorf("Create() id = %q, want id-2", p.ID)
	}
}

func TestUpdateChangesOnlyGivenFields(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	created, _ := s.Create(ctx, models.PostFields{Slug: "s", Title: "old", Summary: "sum", Tags: []string{"a"}, Status: models.StatusDraft})

	*clock = clock.Add(time.Hour)
	title := "new"
	updated, err := s.Update(ctx, created.ID, models.PostPatch{Title: &title})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Title != "new" {
		t.Errorf("Update() title = %q, want new", updated.Title)
	}
	if updated.ID != created.ID {
		t.Errorf("Update() id = %q, want %q", updated.ID, created.ID)
	}
	if !updated.PublishedAt.Equal(created.PublishedAt) {
		t.Errorf("Update() published_at = %v, want %v", updated.PublishedAt, created.PublishedAt)
	}
	if !updated.UpdatedAt.Equal(*clock) {
		t.Errorf("Update() updated_at = %v, want %v", updated.UpdatedAt, *clock)
	}
	if updated.Slug != "s" || updated.Summary != "sum" || updated.Status != models.StatusDraft || strings.Join(updated.Tags, ",") != "a" {
		t.Errorf("Update() touched other fields: %+v", updated)
	}
}

func TestUpdateUnknownIDHasNoSideEffects(t *testing.T) {
	s, _ := newTestStore(t)
	mustSeed(t, s, models.Post{ID: "1", Title: "keep", Status: models.StatusPublished})
	title := "changed"
	if _, err := s.Update(context.Background(), "nope", models.PostPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update(unknown) error = %v, want ErrNotFound", err)
	}
	got, _ := s.GetByID(context.Background(), "1")
	if got.Title != "keep" {
		t.Errorf("GetByID() title = %q, want keep", got.Title)
	}
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	mustSeed(t, s, models.Post{ID: "1"}, models.Post{ID: "2"})

	ok, err := s.Delete(ctx, "1")
	if err != nil || !ok {
		t.Fatalf("Delete(1) = %v, %v; want true, nil", ok, err)
	}
	if _, err := s.GetByID(ctx, "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(1) after delete error = %v, want ErrNotFound", err)
	}

	ok, err = s.Delete(ctx, "missing")
	if err != nil || ok {
		t.Errorf("Delete(missing) = %v, %v; want false, nil", ok, err)
	}
	all, _ := s.List(ctx, models.ListFilter{Status: models.StatusAll})
	if len(all) != 1 {
		t.Errorf("List(all) len = %d, want 1", len(all))
	}
}

func TestReturnedPostsAreCopies(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	mustSeed(t, s, models.Post{ID: "1", Slug: "s", Tags: []string{"a"}, Status: models.StatusPublished})

	p, _ := s.GetByID(ctx, "1")
	p.Tags[0] = "mutated"
	p.Title = "mutated"

	listed, _ := s.List(ctx, models.ListFilter{})
	listed[0].Tags[0] = "mutated"

	again, _ := s.GetByID(ctx, "1")
	if again.Tags[0] != "a" || again.Title != "" {
		t.Errorf("store state leaked through returned copy: %+v", again)
	}
}

func TestSeedRejectsDuplicateID(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.Seed(models.Post{ID: "1"}, models.Post{ID: "1"})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Seed() error = %v, want ErrDuplicateID", err)
	}
}

func TestDefaultPostsSeed(t *testing.T) {
	s := NewContentStore()
	mustSeed(t, s, DefaultPosts()...)
	ctx := context.Background()

	got, _ := s.List(ctx, models.ListFilter{})
	want := "typescript-with-react-router,ssr-and-data-loading,getting-started-with-react-router"
	if strings.Join(slugs(got), ",") != want {
		t.Errorf("List() = %v, want %s", slugs(got), want)
	}
	related, _ := s.List(ctx, models.ListFilter{Tag: "react router"})
	if len(related) != 3 {
		t.Errorf("List(tag=react router) len = %d, want 3", len(related))
	}
}

func TestCancelledContext(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.List(ctx, models.ListFilter{}); !errors.Is(err, context.Canceled) {
		t.Errorf("List() error = %v, want context.Canceled", err)
	}
	if _, err := s.Create(ctx, models.PostFields{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Create() error = %v, want context.Canceled", err)
	}
}

func TestConcurrentMutations(t *testing.T) {
	s := NewContentStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := s.Create(ctx, models.PostFields{Slug: fmt.Sprintf("p-%d", i), Status: models.StatusPublished, Tags: []string{"t"}})
			if err != nil {
				t.Errorf("Create() error = %v", err)
				return
			}
			title := "updated"
			_, _ = s.Update(ctx, p.ID, models.PostPatch{Title: &title})
			_, _ = s.List(ctx, models.ListFilter{Tag: "t"})
			if i%2 == 0 {
				_, _ = s.Delete(ctx, p.ID)
			}
		}(i)
	}
	wg.Wait()

	all, _ := s.List(ctx, models.ListFilter{Status: models.StatusAll})
	if len(all) != 25 {
		t.Errorf("List(all) len = %d, want 25", len(all))
	}
}
