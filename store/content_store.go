package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cppla/miniblog/models"
)

var (
	// ErrNotFound is returned when no post matches the lookup.
	ErrNotFound = errors.New("post not found")
	// ErrDuplicateID is returned by Seed when an id is already taken.
	ErrDuplicateID = errors.New("duplicate post id")
)

// PostStore is the query and mutation contract handlers depend on.
// Every call may block, so callers always pass a context.
type PostStore interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.Post, error)
	GetBySlug(ctx context.Context, slug string) (models.Post, error)
	GetByID(ctx context.Context, id string) (models.Post, error)
	ListTags(ctx context.Context) ([]string, error)
	Create(ctx context.Context, fields models.PostFields) (models.Post, error)
	Update(ctx context.Context, id string, patch models.PostPatch) (models.Post, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ContentStore keeps every post in process memory, in insertion order.
// Build one at startup with NewContentStore and hand it to the router;
// it needs no teardown.
type ContentStore struct {
	mu    sync.RWMutex
	posts []models.Post

	now   func() time.Time
	newID func() string
}

var _ PostStore = (*ContentStore)(nil)

// NewContentStore returns an empty store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Seed inserts fully formed posts, keeping their ids and timestamps.
func (s *ContentStore) Seed(posts ...models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range posts {
		if s.indexOfLocked(p.ID) >= 0 {
			return fmt.Errorf("seed %q: %w", p.ID, ErrDuplicateID)
		}
		s.posts = append(s.posts, p.Clone())
	}
	return nil
}

// List returns posts matching every set filter field, newest first.
func (s *ContentStore) List(ctx context.Context, filter models.ListFilter) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	status := filter.Status
	if status == "" {
		status = models.StatusPublished
	}
	search := strings.ToLower(filter.Search)

	s.mu.RLock()
	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if status != models.StatusAll && p.Status != status {
			continue
		}
		if filter.Tag != "" && !p.HasTag(filter.Tag) {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		out = append(out, p.Clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out, nil
}

func matchesSearch(p models.Post, lowered string) bool {
	return strings.Contains(strings.ToLower(p.Title), lowered) ||
		strings.Contains(strings.ToLower(p.Summary), lowered) ||
		strings.Contains(strings.ToLower(p.Content), lowered)
}

// GetBySlug returns the first post, in insertion order, carrying slug.
func (s *ContentStore) GetBySlug(ctx context.Context, slug string) (models.Post, error) {
	if err := ctx.Err(); err != nil {
		return models.Post{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.Slug == slug {
			return p.Clone(), nil
		}
	}
	return models.Post{}, ErrNotFound
}

// GetByID returns the post with the given id.
func (s *ContentStore) GetByID(ctx context.Context, id string) (models.Post, error) {
	if err := ctx.Err(); err != nil {
		return models.Post{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOfLocked(id); i >= 0 {
		return s.posts[i].Clone(), nil
	}
	return models.Post{}, ErrNotFound
}

// ListTags returns the distinct tags of published posts, sorted ascending.
// Tags used only by drafts are left out.
func (s *ContentStore) ListTags(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	tags := []string{}

	s.mu.RLock()
	for _, p := range s.posts {
		if p.Status != models.StatusPublished {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	s.mu.RUnlock()

	sort.Strings(tags)
	return tags, nil
}

// Create stores a new post. The store assigns the id and stamps both
// timestamps; the slug is not checked for uniqueness.
func (s *ContentStore) Create(ctx context.Context, fields models.PostFields) (models.Post, error) {
	if err := ctx.Err(); err != nil {
		return models.Post{}, err
	}
	now := s.now()
	post := models.Post{
		Slug:        fields.Slug,
		Title:       fields.Title,
		Summary:     fields.Summary,
		Content:     fields.Content,
		Tags:        fields.Tags,
		HeroImage:   fields.HeroImage,
		Status:      fields.Status,
		PublishedAt: now,
		UpdatedAt:   now,
	}
	post = post.Clone()

	s.mu.Lock()
	post.ID = s.newID()
	for s.indexOfLocked(post.ID) >= 0 {
		post.ID = s.newID()
	}
	s.posts = append(s.posts, post)
	s.mu.Unlock()

	return post.Clone(), nil
}

// Update copies the non-nil patch fields onto the post and refreshes
// UpdatedAt. PublishedAt and ID never change.
func (s *ContentStore) Update(ctx context.Context, id string, patch models.PostPatch) (models.Post, error) {
	if err := ctx.Err(); err != nil {
		return models.Post{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return models.Post{}, ErrNotFound
	}
	p := &s.posts[i]
	if patch.Slug != nil {
		p.Slug = *patch.Slug
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Summary != nil {
		p.Summary = *patch.Summary
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Tags != nil {
		p.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.HeroImage != nil {
		p.HeroImage = *patch.HeroImage
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	p.UpdatedAt = s.now()
	return p.Clone(), nil
}

// Delete removes the post and reports whether anything was removed.
func (s *ContentStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return false, nil
	}
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	return true, nil
}

func (s *ContentStore) indexOfLocked(id string) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}
