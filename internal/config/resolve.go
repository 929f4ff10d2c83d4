package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/proteindiff/internal/ctxlog"
)

// DefaultProfile is applied when no profile name is given.
const DefaultProfile = "base"

// ErrProfileNotFound is returned when no search path holds a named profile.
var ErrProfileNotFound = errors.New("configuration profile not found")

// SearchPaths returns the directories profiles are looked up in, in priority
// order: the explicit directory, ./config/inference, the directory of the
// executable, then $XDG_CONFIG_HOME/proteindiff/inference.
func SearchPaths(explicit string) []string {
	var paths []string
	if explicit != "" {
		paths = append(paths, explicit)
	}
	paths = append(paths, filepath.Join("config", "inference"))
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), "config", "inference"))
	}

	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		if home, err := os.UserHomeDir(); err == nil {
			xdg = filepath.Join(home, ".config")
		}
	}
	if xdg != "" {
		paths = append(paths, filepath.Join(xdg, "proteindiff", "inference"))
	}
	return paths
}

// Resolver finds profiles on the search path and applies them with their
// inherited defaults onto the built-in Model.
type Resolver struct {
	SearchPaths []string
	Loaders     []Loader
}

// Resolve builds the Model for a named profile. A missing "base" profile is
// not an error; the built-in defaults are used instead.
func (r *Resolver) Resolve(ctx context.Context, name string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	if name == "" {
		name = DefaultProfile
	}

	m := Defaults()
	if name == DefaultProfile {
		if _, _, err := r.find(name); errors.Is(err, ErrProfileNotFound) {
			logger.Debug("No base profile found, using built-in defaults.", "search_paths", r.SearchPaths)
			return m, nil
		}
	}
	if err := r.apply(ctx, name, m, nil); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Resolver) apply(ctx context.Context, name string, m *Model, chain []string) error {
	logger := ctxlog.FromContext(ctx)
	for _, seen := range chain {
		if seen == name {
			return fmt.Errorf("profile inheritance cycle: %s -> %s", strings.Join(chain, " -> "), name)
		}
	}
	chain = append(chain, name)

	path, loader, err := r.find(name)
	if err != nil {
		return err
	}
	profile, err := loader.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to load profile %q: %w", name, err)
	}

	for _, parent := range profile.Inherits() {
		if err := r.apply(ctx, parent, m, chain); err != nil {
			return err
		}
	}
	if err := profile.ApplyTo(ctx, m); err != nil {
		return fmt.Errorf("failed to apply profile %q: %w", name, err)
	}
	logger.Debug("Profile applied.", "profile", name, "path", path)
	return nil
}

func (r *Resolver) find(name string) (string, Loader, error) {
	for _, dir := range r.SearchPaths {
		for _, loader := range r.Loaders {
			for _, ext := range loader.Extensions() {
				candidate := filepath.Join(dir, name+ext)
				info, err := os.Stat(candidate)
				if err == nil && !info.IsDir() {
					return candidate, loader, nil
				}
			}
		}
	}
	return "", nil, fmt.Errorf("%w: %q (searched %s)", ErrProfileNotFound, name, strings.Join(r.SearchPaths, ", "))
}
