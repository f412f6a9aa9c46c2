package summary

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
)

const (
	// MaxSummaries bounds the collection; older records are dropped.
	MaxSummaries = 5

	// StorageKey is the persisted key name for the collection.
	StorageKey = "chapter-summaries"
)

// Persisted is the storage the collection writes through. *persist.Store
// satisfies it.
type Persisted interface {
	Get() []Summary
	Set(ctx context.Context, v []Summary)
	Update(ctx context.Context, fn func([]Summary) []Summary) []Summary
}

type Collection struct {
	store  Persisted
	newID  func() string
	logger logger.Logger
}

type Option func(*Collection)

// WithIDGenerator replaces uuid.NewString for id assignment.
func WithIDGenerator(fn func() string) Option {
	return func(c *Collection) { c.newID = fn }
}

// NewCollection wraps store. A loaded collection larger than MaxSummaries,
// left behind by an older build with a larger cap, is trimmed once here.
func NewCollection(ctx context.Context, store Persisted, log logger.Logger, opts ...Option) *Collection {
	c := &Collection{
		store:  store,
		newID:  uuid.NewString,
		logger: log,
	}
	for _, opt := range opts {
		opt(c)
	}

	if loaded := store.Get(); len(loaded) > MaxSummaries {
		log.Info(ctx, "Trimming %d stored summaries to %d", len(loaded), MaxSummaries)
		store.Set(ctx, cloneAll(loaded[:MaxSummaries]))
	}
	return c
}

// Insert assigns a fresh id to d, prepends it and drops the oldest records
// beyond MaxSummaries.
func (c *Collection) Insert(ctx context.Context, d Draft) Summary {
	s := Summary{
		ID:           c.newID(),
		ChapterTitle: d.ChapterTitle,
		Takeaways:    cloneLines(d.Takeaways),
		Quotes:       cloneLines(d.Quotes),
	}

	c.store.Update(ctx, func(prev []Summary) []Summary {
		next := make([]Summary, 0, MaxSummaries)
		next = append(next, s)
		for _, p := range prev {
			if len(next) == MaxSummaries {
				break
			}
			next = append(next, p)
		}
		return next
	})

	c.logger.Debug(ctx, "Inserted summary %s (%q)", s.ID, s.ChapterTitle)
	return s.clone()
}

// Update replaces the record with s.ID. Unknown ids are ignored, so an edit
// racing a delete is harmless.
func (c *Collection) Update(ctx context.Context, s Summary) {
	s = s.clone()
	c.store.Update(ctx, func(prev []Summary) []Summary {
		next := make([]Summary, len(prev))
		for i, p := range prev {
			if p.ID == s.ID {
				next[i] = s
			} else {
				next[i] = p
			}
		}
		return next
	})
}

// Delete removes the record with id, if present.
func (c *Collection) Delete(ctx context.Context, id string) {
	c.store.Update(ctx, func(prev []Summary) []Summary {
		next := make([]Summary, 0, len(prev))
		for _, p := range prev {
			if p.ID != id {
				next = append(next, p)
			}
		}
		return next
	})
}

func (c *Collection) Clear(ctx context.Context) {
	c.store.Set(ctx, []Summary{})
}

// All returns the records, most recent first.
func (c *Collection) All() []Summary {
	return cloneAll(c.store.Get())
}

func (c *Collection) Get(id string) (Summary, bool) {
	for _, s := range c.store.Get() {
		if s.ID == id {
			return s.clone(), true
		}
	}
	return Summary{}, false
}

// Search returns the records whose title, any takeaway or any quote contains
// query, ignoring case. An empty query matches everything.
func (c *Collection) Search(query string) []Summary {
	all := c.store.Get()
	if query == "" {
		return cloneAll(all)
	}

	q := strings.ToLower(query)
	var out []Summary
	for _, s := range all {
		if matches(s, q) {
			out = append(out, s.clone())
		}
	}
	return out
}

func matches(s Summary, q string) bool {
	if strings.Contains(strings.ToLower(s.ChapterTitle), q) {
		return true
	}
	for _, t := range s.Takeaways {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	for _, quote := range s.Quotes {
		if strings.Contains(strings.ToLower(quote), q) {
			return true
		}
	}
	return false
}

func cloneAll(in []Summary) []Summary {
	out := make([]Summary, len(in))
	for i, s := range in {
		out[i] = s.clone()
	}
	return out
}
