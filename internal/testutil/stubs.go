// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"sync"

	"portfolio/internal/mail"
	"portfolio/internal/models"

	"github.com/google/uuid"
)

// StoredObject is one blob held by MemoryStore.
type StoredObject struct {
	Data        []byte
	ContentType string
}

// MemoryStore is an in-memory storage.ObjectStore.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]StoredObject
	deleted []string

	// Err, when set, is returned by every operation.
	Err error
}

// NewMemoryStore creates an empty in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]StoredObject)}
}

func (s *MemoryStore) UploadURL(_ context.Context) (string, string, error) {
	if s.Err != nil {
		return "", "", s.Err
	}
	id := uuid.NewString()
	return id, "https://storage.test/upload/" + id, nil
}

func (s *MemoryStore) URL(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	if _, ok := s.objects[id]; !ok {
		return "", nil
	}
	return "https://storage.test/" + id, nil
}

func (s *MemoryStore) Put(_ context.Context, id string, r io.Reader, _ int64, contentType string) error {
	if s.Err != nil {
		return s.Err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[id] = StoredObject{Data: data, ContentType: contentType}
	return nil
}

// Delete removes the object. A missing object is not an error.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.objects, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return s.Err }

// Seed stores an object directly.
func (s *MemoryStore) Seed(id string, data []byte, contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[id] = StoredObject{Data: data, ContentType: contentType}
}

// Get returns a stored object.
func (s *MemoryStore) Get(id string) (StoredObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[id]
	return obj, ok
}

// Deleted lists the IDs passed to Delete, in order.
func (s *MemoryStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// RecordingSender is a mail.Sender that keeps every message.
type RecordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	Err  error
}

func (s *RecordingSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *RecordingSender) Sent() []mail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mail.Message(nil), s.sent...)
}

// RecordingRevalidator is a revalidate.Trigger that records requested paths.
type RecordingRevalidator struct {
	mu    sync.Mutex
	calls [][]string
	Err   error
}

func (r *RecordingRevalidator) Paths(_ context.Context, paths ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string(nil), paths...))
	return r.Err
}

// Calls returns every batch of paths, in order.
func (r *RecordingRevalidator) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

// All flattens every recorded path.
func (r *RecordingRevalidator) All() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		out = append(out, c...)
	}
	return out
}

// Admin is the actor used by service tests.
var Admin = &models.Actor{ID: 1, Email: "admin@example.com", Name: "Admin"}

// ErrBoom is a generic injected failure.
var ErrBoom = errors.New("boom")

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
