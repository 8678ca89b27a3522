package constant

// Shared slog attribute keys.
const (
	Error        = "error"
	UserID       = "user_id"
	RoomID       = "room_id"
	MembershipID = "membership_id"
	PlaylistID   = "playlist_id"
	TrackID      = "track_id"
)
