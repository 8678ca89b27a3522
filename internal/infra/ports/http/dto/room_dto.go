package dto

import "github.com/google/uuid"

type CreateRoomRequest struct {
	Name string `json:"name"`
	// SourcePlaylistID seeds the room playlist with a copy of an existing
	// playlist.
	SourcePlaylistID *uuid.UUID `json:"source_playlist_id,omitempty"`
}

type UpdateRoomRequest struct {
	Name string `json:"name"`
}

type ResolveJoinRequestRequest struct {
	Accept bool `json:"accept"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}
