package session

import (
	"time"

	"github.com/akflix/server/internal/player"
	"github.com/akflix/server/internal/remote"
)

// Session is one mounted player bound to one browser media element.
type Session struct {
	ID        string
	MovieID   string
	Player    *player.Session
	Peer      *remote.Peer
	CreatedAt time.Time
	// Send and Observer belong to the browser connection and survive a
	// source change.
	Send     func(remote.Command) error
	Observer func(player.Snapshot)
}
