package i

// ReplayStore persists the notation history of a finished game.
type ReplayStore interface {
	// Save writes one token per line for the room and returns where it went.
	Save(roomTitle string, notation []string) (string, error)
}
