// Package theme persists the dark/light preference.
package theme

import (
	"context"
	"fmt"
	"strings"

	"github.com/joescharf/todo/internal/store"
)

// Theme is a color scheme name.
type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// Parse accepts "dark" or "light" case-insensitively.
func Parse(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Dark:
		return Dark, nil
	case Light:
		return Light, nil
	}
	return "", fmt.Errorf("invalid theme %q (use: dark, light)", s)
}

// Service reads and writes the theme key.
type Service struct {
	kv store.Store
}

// New returns a Service backed by kv.
func New(kv store.Store) *Service {
	return &Service{kv: kv}
}

// Get returns the stored theme. Anything other than "light" is dark.
func (s *Service) Get(ctx context.Context) Theme {
	if v, ok := s.kv.Get(ctx, store.KeyTheme); ok && Theme(v) == Light {
		return Light
	}
	return Dark
}

// Set stores t.
func (s *Service) Set(ctx context.Context, t Theme) {
	s.kv.Set(ctx, store.KeyTheme, string(t))
}

// Toggle flips the theme and returns the new value.
func (s *Service) Toggle(ctx context.Context) Theme {
	next := Light
	if s.Get(ctx) == Light {
		next = Dark
	}
	s.Set(ctx, next)
	return next
}
