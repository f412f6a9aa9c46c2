package app

import (
	"context"

	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
	"github.com/nguyentantai21042004/chapter-digest/internal/persist"
	"github.com/nguyentantai21042004/chapter-digest/internal/storage"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	// ThemeKey is the persisted key name for the display theme.
	ThemeKey = "theme"
)

// ThemeStore persists the display preference shared by every open session.
type ThemeStore struct {
	store *persist.Store[Theme]
}

func NewThemeStore(ctx context.Context, backend storage.Backend, log logger.Logger) *ThemeStore {
	return &ThemeStore{store: persist.New(ctx, backend, ThemeKey, ThemeLight, log)}
}

func (t *ThemeStore) Persisted() *persist.Store[Theme] {
	return t.store
}

// Get returns the stored theme. Unrecognized values read as light.
func (t *ThemeStore) Get() Theme {
	if v := t.store.Get(); v == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

func (t *ThemeStore) Set(ctx context.Context, theme Theme) error {
	if theme != ThemeLight && theme != ThemeDark {
		return ErrUnknownTheme
	}
	t.store.Set(ctx, theme)
	return nil
}

// Toggle flips between light and dark and returns the new theme.
func (t *ThemeStore) Toggle(ctx context.Context) Theme {
	next := ThemeDark
	if t.Get() == ThemeDark {
		next = ThemeLight
	}
	t.store.Set(ctx, next)
	return next
}
