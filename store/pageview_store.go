package store

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/miniblog/models"
)

// PageViewStore counts post detail views. Counts are keyed by slug and stay
// with the old slug when a post is renamed.
type PageViewStore interface {
	Record(ctx context.Context, slug string, at time.Time) error
	Count(ctx context.Context, slug string) (int64, error)
	CountOn(ctx context.Context, day time.Time) (int64, error)
}

func dayOf(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// GormPageViewStore keeps one row per day and slug.
type GormPageViewStore struct {
	db *gorm.DB
}

// NewGormPageViewStore wraps an open, migrated connection.
func NewGormPageViewStore(db *gorm.DB) *GormPageViewStore {
	return &GormPageViewStore{db: db}
}

// Record bumps the counter for the day of at.
func (g *GormPageViewStore) Record(ctx context.Context, slug string, at time.Time) error {
	// Atomic upsert avoids duplicate key errors under concurrency
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}, {Name: "slug"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": time.Now()}),
	}).Create(&models.PostView{Day: dayOf(at), Slug: slug, Count: 1}).Error
}

// Count sums views across all days.
func (g *GormPageViewStore) Count(ctx context.Context, slug string) (int64, error) {
	var total int64
	err := g.db.WithContext(ctx).Model(&models.PostView{}).
		Where("slug = ?", slug).
		Select("COALESCE(SUM(count),0)").
		Scan(&total).Error
	return total, err
}

// CountOn sums views of every post on one day.
func (g *GormPageViewStore) CountOn(ctx context.Context, day time.Time) (int64, error) {
	var total int64
	// String date equality avoids timezone mismatches with the DATE column
	err := g.db.WithContext(ctx).Model(&models.PostView{}).
		Where("day = ?", dayOf(day).Format("2006-01-02")).
		Select("COALESCE(SUM(count),0)").
		Scan(&total).Error
	return total, err
}

type viewKey struct {
	day  time.Time
	slug string
}

// MemoryPageViewStore is used when no database is configured.
type MemoryPageViewStore struct {
	mu     sync.Mutex
	counts map[viewKey]int64
}

func NewMemoryPageViewStore() *MemoryPageViewStore {
	return &MemoryPageViewStore{counts: make(map[viewKey]int64)}
}

func (m *MemoryPageViewStore) Record(ctx context.Context, slug string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.counts[viewKey{day: dayOf(at), slug: slug}]++
	m.mu.Unlock()
	return nil
}

func (m *MemoryPageViewStore) Count(ctx context.Context, slug string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for k, n := range m.counts {
		if k.slug == slug {
			total += n
		}
	}
	return total, nil
}

func (m *MemoryPageViewStore) CountOn(ctx context.Context, day time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d := dayOf(day)
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for k, n := range m.counts {
		if k.day.Equal(d) {
			total += n
		}
	}
	return total, nil
}
