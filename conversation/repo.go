package conversation

// Repo is an append-only turn log per session.
type Repo interface {
	Append(sessionID string, turn Turn) error
	List(sessionID string) ([]Turn, error)
	Clear(sessionID string) error
}
