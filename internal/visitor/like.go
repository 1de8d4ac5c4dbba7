package visitor

import (
	"context"
	"errors"
	"sync"

	"portfolio/internal/models"
)

// ErrPending is returned when a toggle is already in flight.
var ErrPending = errors.New("visitor: like toggle already in progress")

// LikeRemote performs the authoritative toggle.
type LikeRemote interface {
	ToggleLike(ctx context.Context, postID uint, visitorID string) (*models.LikeState, error)
}

// LikeToggle is the local like state of one post for one visitor.
type LikeToggle struct {
	remote  LikeRemote
	postID  uint
	visitor string

	mu      sync.Mutex
	state   models.LikeState
	pending bool
}

// NewLikeToggle starts from initial, usually the server's status answer.
func NewLikeToggle(remote LikeRemote, postID uint, visitorID string, initial models.LikeState) *LikeToggle {
	return &LikeToggle{remote: remote, postID: postID, visitor: visitorID, state: initial}
}

// State returns the current, possibly optimistic, state.
func (l *LikeToggle) State() models.LikeState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Toggle flips the state at once, then asks the server. The server's answer replaces
// the local state; on error the pre-toggle state comes back and the error is returned.
func (l *LikeToggle) Toggle(ctx context.Context) (models.LikeState, error) {
	l.mu.Lock()
	if l.pending {
		st := l.state
		l.mu.Unlock()
		return st, ErrPending
	}
	prev := l.state
	l.state = flipped(prev)
	l.pending = true
	l.mu.Unlock()

	res, err := l.remote.ToggleLike(ctx, l.postID, l.visitor)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = false
	switch {
	case err != nil:
		l.state = prev
		return prev, err
	case res != nil:
		l.state = *res
	}
	return l.state, nil
}

func flipped(s models.LikeState) models.LikeState {
	if s.Liked {
		s.Likes--
		if s.Likes < 0 {
			s.Likes = 0
		}
	} else {
		s.Likes++
	}
	s.Liked = !s.Liked
	return s
}
