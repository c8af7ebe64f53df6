// Package versions holds the ordered list of document snapshots for a
// project and the currently selected pair for comparison.
package versions

import (
	"context"
	"errors"
	"fmt"

	"prdpilot/pkg/types"
)

// ErrSameVersion is the local validation error for comparing a version
// with itself. It is raised before any network call.
var ErrSameVersion = errors.New("select two different versions")

// ErrUnknownVersion marks a selection outside the loaded list.
var ErrUnknownVersion = errors.New("version not in history")

// ErrNotLoaded marks access before Load succeeded. Version history must be
// loaded before a specific version can be requested.
var ErrNotLoaded = errors.New("version history not loaded")

type versionFetcher interface {
	GetVersions(ctx context.Context, projectID string) (*types.VersionList, error)
}

// Registry caches one project's version history. Versions are numbered
// monotonically from 1 and never renumbered or removed; a payload that
// breaks that ordering is rejected on load.
type Registry struct {
	projectID string
	fetcher   versionFetcher

	loaded   bool
	current  int
	versions []types.DocumentVersion
	selected int // version chosen for viewing, defaults to current
}

// NewRegistry creates an empty registry for a project.
func NewRegistry(fetcher versionFetcher, projectID string) *Registry {
	return &Registry{projectID: projectID, fetcher: fetcher}
}

// Load fetches the ordered version list and the current pointer. The
// selected view version resets to current on every load.
func (r *Registry) Load(ctx context.Context) error {
	list, err := r.fetcher.GetVersions(ctx, r.projectID)
	if err != nil {
		return fmt.Errorf("failed to load version history: %w", err)
	}

	prev := 0
	for _, v := range list.Versions {
		if v.Version <= prev {
			return fmt.Errorf("version history out of order: %d after %d", v.Version, prev)
		}
		prev = v.Version
	}

	r.versions = list.Versions
	r.current = list.CurrentVersion
	r.selected = list.CurrentVersion
	r.loaded = true
	return nil
}

// Versions returns the loaded history in order.
func (r *Registry) Versions() []types.DocumentVersion {
	return r.versions
}

// Current returns the backend's current version pointer.
func (r *Registry) Current() int {
	return r.current
}

// Selected returns the version chosen for viewing.
func (r *Registry) Selected() int {
	return r.selected
}

// Has reports whether a version number exists in the loaded history.
func (r *Registry) Has(version int) bool {
	for _, v := range r.versions {
		if v.Version == version {
			return true
		}
	}
	return false
}

// Select picks the version to view.
func (r *Registry) Select(version int) error {
	if !r.loaded {
		return ErrNotLoaded
	}
	if !r.Has(version) {
		return fmt.Errorf("%w: %d", ErrUnknownVersion, version)
	}
	r.selected = version
	return nil
}

// ValidatePair checks a comparison pair: both versions must exist and
// differ. A diff of a version against itself is meaningless, so it is
// rejected locally with no network call.
func (r *Registry) ValidatePair(v1, v2 int) error {
	if !r.loaded {
		return ErrNotLoaded
	}
	if v1 == v2 {
		return ErrSameVersion
	}
	for _, v := range []int{v1, v2} {
		if !r.Has(v) {
			return fmt.Errorf("%w: %d", ErrUnknownVersion, v)
		}
	}
	return nil
}
