package core

import "context"

// SessionStore persists State snapshots keyed by session id so a later run
// sharing the id can carry accumulated outputs and trace history forward.
// An unknown id is not an error: Get reports found=false. Implementations
// must serialize concurrent access to the same id; last writer wins.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (st *State, found bool, err error)
	Put(ctx context.Context, sessionID string, st *State) error
}
