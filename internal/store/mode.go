package store

// Mode is the consistency mode of a session.
type Mode int

const (
	// ModeInitializing is the state before the first Load completes.
	ModeInitializing Mode = iota
	// ModeRemoteBacked mirrors mutations to the remote store.
	ModeRemoteBacked
	// ModeLocalOnly keeps mutations in the local cache until a manual resync succeeds.
	ModeLocalOnly
)

func (m Mode) String() string {
	switch m {
	case ModeInitializing:
		return "initializing"
	case ModeRemoteBacked:
		return "remote-backed"
	case ModeLocalOnly:
		return "local-only"
	}
	return "unknown"
}
