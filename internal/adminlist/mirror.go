// Package adminlist keeps a local mirror of the admin post and project tables and
// applies publish and archive actions optimistically, rolling back to the last
// server snapshot when the remote call fails.
package adminlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"portfolio/internal/models"

	"golang.org/x/sync/errgroup"
)

// ErrNotConfirmed is returned by Archive when the confirmation is declined.
var ErrNotConfirmed = errors.New("adminlist: action not confirmed")

// Row is the part of a post or project the admin table shows.
type Row struct {
	ID     uint          `json:"id"`
	Title  string        `json:"title"`
	Slug   string        `json:"slug"`
	Status models.Status `json:"status"`
}

// Remote performs the authoritative status change.
type Remote interface {
	Publish(ctx context.Context, id uint) error
	Archive(ctx context.Context, id uint) error
}

// Revalidator marks the public pages of a record as stale.
type Revalidator interface {
	Revalidate(ctx context.Context, id uint) error
}

// Confirmer asks the operator before a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// Mirror is a local copy of one admin table. Kind names the entity in prompts and logs.
type Mirror struct {
	kind   string
	remote Remote
	reval  Revalidator
	logger *slog.Logger

	mu       sync.Mutex
	rows     []Row
	snapshot []Row
	selected map[uint]struct{}
}

// New creates an empty mirror for kind ("post" or "project").
func New(kind string, remote Remote, reval Revalidator) *Mirror {
	return &Mirror{
		kind:     kind,
		remote:   remote,
		reval:    reval,
		logger:   slog.Default().With(slog.String("component", "adminlist"), slog.String("kind", kind)),
		selected: make(map[uint]struct{}),
	}
}

// Load replaces the mirror with fresh server state.
func (m *Mirror) Load(rows []Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append([]Row(nil), rows...)
	m.snapshot = append([]Row(nil), rows...)
}

// Rows returns a copy of the current, possibly optimistic, rows.
func (m *Mirror) Rows() []Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Row(nil), m.rows...)
}

// Row returns the current state of one row.
func (m *Mirror) Row(id uint) (Row, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			return r, true
		}
	}
	return Row{}, false
}

// Toggle adds id to the selection, or removes it when already selected.
func (m *Mirror) Toggle(id uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.selected[id]; ok {
		delete(m.selected, id)
		return
	}
	m.selected[id] = struct{}{}
}

// Clear empties the selection.
func (m *Mirror) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = make(map[uint]struct{})
}

// Selected returns the selected IDs in ascending order.
func (m *Mirror) Selected() []uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectedLocked()
}

func (m *Mirror) selectedLocked() []uint {
	ids := make([]uint, 0, len(m.selected))
	for id := range m.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Publish marks id published locally, then publishes it remotely. Revalidation runs
// whatever the outcome. A remote failure restores the whole mirror from the snapshot.
func (m *Mirror) Publish(ctx context.Context, id uint) error {
	m.setStatus(models.StatusPublished, id)

	err := m.remote.Publish(ctx, id)
	m.revalidate(ctx, id)

	if err != nil {
		m.rollback()
		return fmt.Errorf("publish %s %d: %w", m.kind, id, err)
	}
	m.commit()
	return nil
}

// BulkPublish publishes every selected row concurrently, then revalidates each one.
// If any publish fails the whole mirror returns to the pre-batch snapshot, even for
// rows whose remote publish succeeded. The selection is kept so the batch can be retried.
func (m *Mirror) BulkPublish(ctx context.Context) error {
	m.mu.Lock()
	ids := m.selectedLocked()
	m.mu.Unlock()
	if len(ids) == 0 {
		return nil
	}

	m.setStatus(models.StatusPublished, ids...)

	errs := make([]error, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			if err := m.remote.Publish(ctx, id); err != nil {
				errs[i] = fmt.Errorf("publish %s %d: %w", m.kind, id, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var rg errgroup.Group
	for _, id := range ids {
		rg.Go(func() error {
			m.revalidate(ctx, id)
			return nil
		})
	}
	_ = rg.Wait()

	if err := errors.Join(errs...); err != nil {
		m.rollback()
		return err
	}

	m.mu.Lock()
	m.selected = make(map[uint]struct{})
	m.mu.Unlock()
	m.commit()
	return nil
}

// Archive asks confirm first. A declined confirmation changes nothing and returns
// ErrNotConfirmed. A remote failure restores the whole mirror from the snapshot.
func (m *Mirror) Archive(ctx context.Context, id uint, confirm Confirmer) error {
	if confirm != nil {
		ok, err := confirm.Confirm(ctx, fmt.Sprintf("Are you sure you want to archive this %s?", m.kind))
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotConfirmed
		}
	}

	m.setStatus(models.StatusArchived, id)
	if err := m.remote.Archive(ctx, id); err != nil {
		m.rollback()
		return fmt.Errorf("archive %s %d: %w", m.kind, id, err)
	}
	m.commit()
	return nil
}

func (m *Mirror) setStatus(status models.Status, ids ...uint) {
	want := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if _, ok := want[m.rows[i].ID]; ok {
			m.rows[i].Status = status
		}
	}
}

// revalidate never fails the action; stale pages expire with the cache TTL.
func (m *Mirror) revalidate(ctx context.Context, id uint) {
	if m.reval == nil {
		return
	}
	if err := m.reval.Revalidate(ctx, id); err != nil {
		m.logger.WarnContext(ctx, "revalidation failed",
			slog.Uint64("id", uint64(id)),
			slog.String("error", err.Error()),
		)
	}
}

func (m *Mirror) rollback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append([]Row(nil), m.snapshot...)
}

func (m *Mirror) commit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = append([]Row(nil), m.rows...)
}
