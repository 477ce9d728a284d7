package models

import (
	"strings"
	"time"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	StatusPublished PostStatus = "published"
	StatusDraft     PostStatus = "draft"
	// StatusAll is only meaningful as a list filter and matches both states.
	StatusAll PostStatus = "all"
)

// Valid reports whether s is a state a stored post may carry.
func (s PostStatus) Valid() bool {
	return s == StatusPublished || s == StatusDraft
}

// ParsePostStatus normalizes user input; ok is false for unknown values.
func ParsePostStatus(raw string) (PostStatus, bool) {
	s := PostStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPublished, StatusDraft, StatusAll:
		return s, true
	}
	return "", false
}

// Post is a blog article.
//
// Content holds pre-sanitized HTML. It is stored and served verbatim; nothing
// in this module escapes or cleans it, so whoever writes it is trusted.
type Post struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	HeroImage   string     `json:"hero_image,omitempty"`
	PublishedAt time.Time  `json:"published_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Status      PostStatus `json:"status"`
}

// Clone returns a copy that shares no memory with p.
func (p Post) Clone() Post {
	if p.Tags != nil {
		tags := make([]string, len(p.Tags))
		copy(tags, p.Tags)
		p.Tags = tags
	}
	return p
}

// HasTag reports whether any tag equals tag, ignoring case.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// PostFields is the input for creating a post: everything except the id and timestamps.
type PostFields struct {
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Content   string     `json:"content"`
	Tags      []string   `json:"tags"`
	HeroImage string     `json:"hero_image"`
	Status    PostStatus `json:"status"`
}

// PostPatch is a partial update. Nil fields keep their stored value.
type PostPatch struct {
	Slug      *string     `json:"slug"`
	Title     *string     `json:"title"`
	Summary   *string     `json:"summary"`
	Content   *string     `json:"content"`
	Tags      *[]string   `json:"tags"`
	HeroImage *string     `json:"hero_image"`
	Status    *PostStatus `json:"status"`
}

// Empty reports whether the patch carries no field at all.
func (p PostPatch) Empty() bool {
	return p.Slug == nil && p.Title == nil && p.Summary == nil && p.Content == nil &&
		p.Tags == nil && p.HeroImage == nil && p.Status == nil
}

// ListFilter narrows a post listing. All set fields must match.
type ListFilter struct {
	// Status defaults to StatusPublished when empty.
	Status PostStatus
	Tag    string
	Search string
}
