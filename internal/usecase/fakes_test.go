package usecase

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/soundroomhq/soundroom/internal/domain/models"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/openai"
)

// In-memory repository fakes. They mirror the postgres repositories'
// contracts, including sql.ErrNoRows on missing rows, so usecases are
// exercised against the same error surface they see in production.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *user
	r.users[user.ID] = &clone

	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}

	clone := *user

	return &clone, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}

	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *user
	r.users[user.ID] = &clone

	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*models.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[uuid.UUID]*models.RefreshToken)}
}

func (r *fakeTokenRepo) CreateToken(_ context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *token
	r.tokens[token.ID] = &clone

	return nil
}

func (r *fakeTokenRepo) GetByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.tokens {
		if stored.Token == token {
			clone := *stored
			return &clone, nil
		}
	}

	return nil, sql.ErrNoRows
}

func (r *fakeTokenRepo) RevokeToken(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.tokens[id]; ok && !stored.Revoked {
		now := time.Now()
		stored.Revoked = true
		stored.RevokedAt = &now
	}

	return nil
}

func (r *fakeTokenRepo) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	for _, stored := range r.tokens {
		if stored.UserID == userID && !stored.Revoked {
			stored.Revoked = true
			stored.RevokedAt = &now
		}
	}

	return nil
}

type fakeTrackRepo struct {
	mu     sync.Mutex
	tracks map[uuid.UUID]*models.Track
}

func newFakeTrackRepo() *fakeTrackRepo {
	return &fakeTrackRepo{tracks: make(map[uuid.UUID]*models.Track)}
}

func (r *fakeTrackRepo) CreateTrack(_ context.Context, track *models.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *track
	r.tracks[track.ID] = &clone

	return nil
}

func (r *fakeTrackRepo) GetTrackByID(_ context.Context, id uuid.UUID) (*models.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	track, ok := r.tracks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}

	clone := *track

	return &clone, nil
}

func (r *fakeTrackRepo) ListVisibleTracks(_ context.Context, userID uuid.UUID) ([]models.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Track

	for _, track := range r.tracks {
		if track.Status != models.TrackActive {
			continue
		}
		if track.Visibility == models.TrackPrivate && (track.UploaderID == nil || *track.UploaderID != userID) {
			continue
		}
		out = append(out, *track)
	}

	return out, nil
}

func (r *fakeTrackRepo) SearchTracks(ctx context.Context, userID uuid.UUID, term string) ([]models.Track, error) {
	visible, err := r.ListVisibleTracks(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out []models.Track

	for _, track := range visible {
		if strings.Contains(strings.ToLower(track.Title), strings.ToLower(term)) ||
			strings.Contains(strings.ToLower(track.Artist), strings.ToLower(term)) {
			out = append(out, track)
		}
	}

	return out, nil
}

func (r *fakeTrackRepo) UpdateTrack(_ context.Context, track *models.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *track
	r.tracks[track.ID] = &clone

	return nil
}

func (r *fakeTrackRepo) SetMediaURL(_ context.Context, id uuid.UUID, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if track, ok := r.tracks[id]; ok {
		track.MediaURL = url
	}

	return nil
}

func (r *fakeTrackRepo) RemoveTrack(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if track, ok := r.tracks[id]; ok {
		track.Status = models.TrackRemoved
	}

	return nil
}

func (r *fakeTrackRepo) DeleteTrack(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tracks, id)

	return nil
}

type fakePlaylistRepo struct {
	mu        sync.Mutex
	playlists map[uuid.UUID]*models.Playlist
	entries   map[uuid.UUID][]models.PlaylistEntry
	tracks    *fakeTrackRepo
}

func newFakePlaylistRepo(tracks *fakeTrackRepo) *fakePlaylistRepo {
	return &fakePlaylistRepo{
		playlists: make(map[uuid.UUID]*models.Playlist),
		entries:   make(map[uuid.UUID][]models.PlaylistEntry),
		tracks:    tracks,
	}
}

func (r *fakePlaylistRepo) CreatePlaylist(_ context.Context, playlist *models.Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *playlist
	r.playlists[playlist.ID] = &clone

	return nil
}

func (r *fakePlaylistRepo) GetPlaylistByID(_ context.Context, id uuid.UUID) (*models.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	playlist, ok := r.playlists[id]
	if !ok {
		return nil, sql.ErrNoRows
	}

	clone := *playlist

	return &clone, nil
}

func (r *fakePlaylistRepo) ListPlaylistsByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Playlist

	for _, playlist := range r.playlists {
		if playlist.OwnerID != nil && *playlist.OwnerID == ownerID {
			out = append(out, *playlist)
		}
	}

	return out, nil
}

func (r *fakePlaylistRepo) SearchPlaylists(_ context.Context, ownerID uuid.UUID, term string) ([]models.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Playlist

	for _, playlist := range r.playlists {
		if playlist.OwnerID == nil || *playlist.OwnerID != ownerID {
			continue
		}
		if strings.Contains(strings.ToLower(playlist.Name), strings.ToLower(term)) {
			out = append(out, *playlist)
		}
	}

	return out, nil
}

func (r *fakePlaylistRepo) UpdatePlaylist(_ context.Context, playlist *models.Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *playlist
	r.playlists[playlist.ID] = &clone

	return nil
}

func (r *fakePlaylistRepo) DeletePlaylist(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.playlists, id)
	delete(r.entries, id)

	return nil
}

func (r *fakePlaylistRepo) ListEntries(_ context.Context, playlistID uuid.UUID) ([]models.PlaylistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := append([]models.PlaylistEntry(nil), r.entries[playlistID]...)

	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })

	return out, nil
}

func (r *fakePlaylistRepo) ListPlaylistTracks(ctx context.Context, playlistID uuid.UUID) ([]models.PlaylistTrack, error) {
	entries, err := r.ListEntries(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	out := make([]models.PlaylistTrack, 0, len(entries))

	for _, entry := range entries {
		item := models.PlaylistTrack{Position: entry.Position}
		item.ID = entry.TrackID

		if r.tracks != nil {
			if track, err := r.tracks.GetTrackByID(ctx, entry.TrackID); err == nil {
				item.Track = *track
			}
		}

		out = append(out, item)
	}

	return out, nil
}

func (r *fakePlaylistRepo) CountEntries(_ context.Context, playlistID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries[playlistID]), nil
}

func (r *fakePlaylistRepo) AppendEntry(_ context.Context, playlistID, trackID uuid.UUID) (*models.PlaylistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	max := 0
	for _, entry := range r.entries[playlistID] {
		if entry.Position > max {
			max = entry.Position
		}
	}

	entry := models.NewPlaylistEntry(playlistID, trackID, max+1)
	r.entries[playlistID] = append(r.entries[playlistID], *entry)

	return entry, nil
}

func (r *fakePlaylistRepo) RemoveEntry(_ context.Context, playlistID, trackID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.entries[playlistID]

	for i, entry := range entries {
		if entry.TrackID == trackID {
			return r.removeLocked(playlistID, i, entry.Position)
		}
	}

	return sql.ErrNoRows
}

func (r *fakePlaylistRepo) RemoveEntryAt(_ context.Context, playlistID uuid.UUID, position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, entry := range r.entries[playlistID] {
		if entry.Position == position {
			return r.removeLocked(playlistID, i, position)
		}
	}

	return sql.ErrNoRows
}

func (r *fakePlaylistRepo) removeLocked(playlistID uuid.UUID, index, position int) error {
	entries := r.entries[playlistID]
	entries = append(entries[:index], entries[index+1:]...)

	for i := range entries {
		if entries[i].Position > position {
			entries[i].Position--
		}
	}

	r.entries[playlistID] = entries

	return nil
}

func (r *fakePlaylistRepo) MoveEntry(_ context.Context, playlistID, trackID uuid.UUID, from, to int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.entries[playlistID]

	moved := -1
	for i, entry := range entries {
		if entry.TrackID == trackID && entry.Position == from {
			moved = i
			break
		}
	}

	if moved == -1 {
		return sql.ErrNoRows
	}

	for i := range entries {
		switch {
		case i == moved:
		case from > to && entries[i].Position >= to && entries[i].Position < from:
			entries[i].Position++
		case from < to && entries[i].Position > from && entries[i].Position <= to:
			entries[i].Position--
		}
	}

	entries[moved].Position = to

	return nil
}

func (r *fakePlaylistRepo) CopyEntries(ctx context.Context, srcID, dstID uuid.UUID) error {
	entries, err := r.ListEntries(ctx, srcID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range entries {
		copied := *models.NewPlaylistEntry(dstID, entry.TrackID, entry.Position)
		r.entries[dstID] = append(r.entries[dstID], copied)
	}

	return nil
}

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*models.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[uuid.UUID]*models.Room)}
}

func (r *fakeRoomRepo) CreateRoom(_ context.Context, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *room
	r.rooms[room.ID] = &clone

	return nil
}

func (r *fakeRoomRepo) GetRoomByID(_ context.Context, id uuid.UUID) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}

	clone := *room

	return &clone, nil
}

func (r *fakeRoomRepo) ListRoomsForUser(_ context.Context, _ uuid.UUID) ([]models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Room, 0, len(r.rooms))

	for _, room := range r.rooms {
		out = append(out, *room)
	}

	return out, nil
}

func (r *fakeRoomRepo) UpdateRoom(_ context.Context, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.rooms[room.ID]; ok {
		stored.Name = room.Name
	}

	return nil
}

func (r *fakeRoomRepo) UpdatePlayback(_ context.Context, id uuid.UUID, state models.PlaybackState, positionSeconds, entryIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[id]; ok {
		room.PlaybackState = state
		room.PositionSeconds = positionSeconds
		room.CurrentEntryIndex = entryIndex
	}

	return nil
}

func (r *fakeRoomRepo) DeleteRoom(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, id)

	return nil
}

// fakeMembershipRepo keeps insertion order, which stands in for the
// created_at ordering of ListMembershipsByRoom.
type fakeMembershipRepo struct {
	mu          sync.Mutex
	memberships []*models.Membership
	users       *fakeUserRepo
}

func newFakeMembershipRepo(users *fakeUserRepo) *fakeMembershipRepo {
	return &fakeMembershipRepo{users: users}
}

func (r *fakeMembershipRepo) CreateMembership(_ context.Context, membership *models.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *membership
	r.memberships = append(r.memberships, &clone)

	return nil
}

func (r *fakeMembershipRepo) GetMembershipByID(_ context.Context, id uuid.UUID) (*models.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, membership := range r.memberships {
		if membership.ID == id {
			clone := *membership
			return &clone, nil
		}
	}

	return nil, sql.ErrNoRows
}

func (r *fakeMembershipRepo) GetMembershipByRoomAndUser(_ context.Context, roomID, userID uuid.UUID) (*models.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, membership := range r.memberships {
		if membership.RoomID == roomID && membership.UserID == userID {
			clone := *membership
			return &clone, nil
		}
	}

	return nil, sql.ErrNoRows
}

func (r *fakeMembershipRepo) ListMembershipsByRoom(_ context.Context, roomID uuid.UUID) ([]models.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Membership

	for _, membership := range r.memberships {
		if membership.RoomID == roomID {
			out = append(out, *membership)
		}
	}

	return out, nil
}

func (r *fakeMembershipRepo) Roster(ctx context.Context, roomID uuid.UUID) ([]models.RosterEntry, error) {
	memberships, err := r.ListMembershipsByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	out := make([]models.RosterEntry, 0, len(memberships))

	for _, membership := range memberships {
		entry := models.RosterEntry{
			MembershipID: membership.ID,
			UserID:       membership.UserID,
			Role:         membership.Role,
			Presence:     membership.Presence,
		}

		if r.users != nil {
			if user, err := r.users.GetUserByID(ctx, membership.UserID); err == nil {
				entry.DisplayName = user.DisplayName
				entry.AvatarURL = user.AvatarURL
			}
		}

		out = append(out, entry)
	}

	return out, nil
}

func (r *fakeMembershipRepo) UpdateRole(_ context.Context, id uuid.UUID, role models.MemberRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, membership := range r.memberships {
		if membership.ID == id {
			membership.Role = role
			return nil
		}
	}

	return nil
}

func (r *fakeMembershipRepo) UpdatePresence(_ context.Context, id uuid.UUID, presence models.Presence) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, membership := range r.memberships {
		if membership.ID == id {
			membership.Presence = presence
			return nil
		}
	}

	return nil
}

func (r *fakeMembershipRepo) DeleteMembership(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, membership := range r.memberships {
		if membership.ID == id {
			r.memberships = append(r.memberships[:i], r.memberships[i+1:]...)
			return nil
		}
	}

	return nil
}

type fakeJoinRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*models.JoinRequest
}

func newFakeJoinRequestRepo() *fakeJoinRequestRepo {
	return &fakeJoinRequestRepo{requests: make(map[uuid.UUID]*models.JoinRequest)}
}

func (r *fakeJoinRequestRepo) CreateJoinRequest(_ context.Context, request *models.JoinRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *request
	r.requests[request.ID] = &clone

	return nil
}

func (r *fakeJoinRequestRepo) GetJoinRequestByID(_ context.Context, id uuid.UUID) (*models.JoinRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}

	clone := *request

	return &clone, nil
}

func (r *fakeJoinRequestRepo) GetOpenJoinRequest(_ context.Context, roomID, userID uuid.UUID) (*models.JoinRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, request := range r.requests {
		if request.RoomID == roomID && request.UserID == userID &&
			(request.Status == models.JoinRequestPending || request.Status == models.JoinRequestAccepted) {
			clone := *request
			return &clone, nil
		}
	}

	return nil, sql.ErrNoRows
}

func (r *fakeJoinRequestRepo) ListPendingByRoom(_ context.Context, roomID uuid.UUID) ([]models.JoinRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.JoinRequest

	for _, request := range r.requests {
		if request.RoomID == roomID && request.Status == models.JoinRequestPending {
			out = append(out, *request)
		}
	}

	return out, nil
}

func (r *fakeJoinRequestRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.JoinRequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if request, ok := r.requests[id]; ok {
		request.Status = status
	}

	return nil
}

func (r *fakeJoinRequestRepo) MarkRemoved(_ context.Context, roomID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, request := range r.requests {
		if request.RoomID == roomID && request.UserID == userID && request.Status == models.JoinRequestAccepted {
			request.Status = models.JoinRequestRemoved
		}
	}

	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []models.ChatMessage
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) CreateMessage(_ context.Context, message *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, *message)

	return nil
}

func (r *fakeMessageRepo) ListMessages(_ context.Context, roomID uuid.UUID, before time.Time, limit int) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if before.IsZero() {
		before = time.Now()
	}

	var out []models.ChatMessage

	for i := len(r.messages) - 1; i >= 0 && len(out) < limit; i-- {
		message := r.messages[i]
		if message.RoomID == roomID && message.CreatedAt.Before(before) {
			out = append(out, message)
		}
	}

	return out, nil
}

func (r *fakeMessageRepo) SearchMessages(_ context.Context, roomID uuid.UUID, term string, limit int) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.ChatMessage

	for i := len(r.messages) - 1; i >= 0 && len(out) < limit; i-- {
		message := r.messages[i]
		if message.RoomID == roomID && strings.Contains(strings.ToLower(message.Body), strings.ToLower(term)) {
			out = append(out, message)
		}
	}

	return out, nil
}

// fakeRegistry records every registry interaction instead of writing to
// sockets.
type fakeRegistry struct {
	mu           sync.Mutex
	registered   map[uuid.UUID][]uuid.UUID
	unregistered []uuid.UUID
	broadcasts   map[uuid.UUID][]any
	writes       map[uuid.UUID][]any
	closedRooms  []uuid.UUID
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		registered: make(map[uuid.UUID][]uuid.UUID),
		broadcasts: make(map[uuid.UUID][]any),
		writes:     make(map[uuid.UUID][]any),
	}
}

func (r *fakeRegistry) Register(roomID, membershipID uuid.UUID, _ *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.registered[roomID] = append(r.registered[roomID], membershipID)
}

func (r *fakeRegistry) Unregister(_, membershipID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unregistered = append(r.unregistered, membershipID)
}

func (r *fakeRegistry) Broadcast(roomID uuid.UUID, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.broadcasts[roomID] = append(r.broadcasts[roomID], payload)
}

func (r *fakeRegistry) WriteTo(_, membershipID uuid.UUID, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.writes[membershipID] = append(r.writes[membershipID], payload)
}

func (r *fakeRegistry) ConnectedMemberships(roomID uuid.UUID) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]uuid.UUID(nil), r.registered[roomID]...)
}

func (r *fakeRegistry) CloseRoom(roomID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closedRooms = append(r.closedRooms, roomID)
	delete(r.registered, roomID)
}

type fakeNotifier struct {
	mu       sync.Mutex
	notified map[uuid.UUID][]any
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notified: make(map[uuid.UUID][]any)}
}

func (n *fakeNotifier) Watch(_ uuid.UUID, _ *websocket.Conn) {}

func (n *fakeNotifier) Unwatch(_ uuid.UUID) {}

func (n *fakeNotifier) Notify(requestID uuid.UUID, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.notified[requestID] = append(n.notified[requestID], payload)
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = body

	return "https://media.test/" + key, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)

	return nil
}

type fakeIntelligence struct {
	transcript    string
	transcribeErr error
	verdict       openai.Verdict
	moderateErr   error

	moderated []string
}

func (i *fakeIntelligence) Transcribe(_ context.Context, _ string, _ []byte) (string, error) {
	if i.transcribeErr != nil {
		return "", i.transcribeErr
	}

	return i.transcript, nil
}

func (i *fakeIntelligence) Moderate(_ context.Context, lyrics string) (openai.Verdict, error) {
	i.moderated = append(i.moderated, lyrics)

	if i.moderateErr != nil {
		return openai.Verdict{}, i.moderateErr
	}

	return i.verdict, nil
}
