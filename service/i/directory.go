package i

// RoomSummary is the lobby view of a room.
type RoomSummary struct {
	Title    string
	Players  int
	Capacity int
	InGame   bool
	Private  bool
}

// Directory exposes read-only lobby listings to outer surfaces.
type Directory interface {
	// RoomSummaries lists every open room ordered by title.
	RoomSummaries() []RoomSummary

	// Nicknames lists every registered nickname in arrival order.
	Nicknames() []string
}
