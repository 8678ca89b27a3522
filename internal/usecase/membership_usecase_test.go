package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundroomhq/soundroom/internal/apperr"
	"github.com/soundroomhq/soundroom/internal/domain/events"
	"github.com/soundroomhq/soundroom/internal/domain/models"
)

type membershipFixture struct {
	uc             MembershipUsecase
	membershipRepo *fakeMembershipRepo
	joinRepo       *fakeJoinRequestRepo
	roomRepo       *fakeRoomRepo
	playlistRepo   *fakePlaylistRepo
	registry       *fakeRegistry

	room *models.Room
}

func newMembershipFixture(t *testing.T) *membershipFixture {
	t.Helper()

	f := &membershipFixture{
		membershipRepo: newFakeMembershipRepo(newFakeUserRepo()),
		joinRepo:       newFakeJoinRequestRepo(),
		roomRepo:       newFakeRoomRepo(),
		playlistRepo:   newFakePlaylistRepo(nil),
		registry:       newFakeRegistry(),
	}

	f.uc = NewMembershipUsecase(f.membershipRepo, f.joinRepo, f.roomRepo, f.playlistRepo, f.registry)

	playlist := models.NewPlaylist("room", models.PlaylistRoom, nil)
	require.NoError(t, f.playlistRepo.CreatePlaylist(context.Background(), playlist))

	f.room = models.NewRoom("listening", playlist.ID)
	require.NoError(t, f.roomRepo.CreateRoom(context.Background(), f.room))

	return f
}

// addMember joins a fresh user to the fixture room. Insertion order is the
// join order the succession rules run on.
func (f *membershipFixture) addMember(t *testing.T, role models.MemberRole) *models.Membership {
	t.Helper()

	membership := models.NewMembership(f.room.ID, uuid.New(), role)
	require.NoError(t, f.membershipRepo.CreateMembership(context.Background(), membership))

	return membership
}

func (f *membershipFixture) roleOf(t *testing.T, membershipID uuid.UUID) models.MemberRole {
	t.Helper()

	membership, err := f.membershipRepo.GetMembershipByID(context.Background(), membershipID)
	require.NoError(t, err)

	return membership.Role
}

func TestLeaveOwnerPromotesEarliestManager(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()

	owner := f.addMember(t, models.RoleOwner)
	member := f.addMember(t, models.RoleMember)
	firstManager := f.addMember(t, models.RoleManager)
	f.addMember(t, models.RoleManager)

	outcome, err := f.uc.Leave(ctx, owner.ID)
	require.NoError(t, err)

	assert.False(t, outcome.RoomDeleted)
	require.NotNil(t, outcome.NewOwner)
	assert.Equal(t, firstManager.ID, outcome.NewOwner.ID)
	assert.Equal(t, models.RoleOwner, f.roleOf(t, firstManager.ID))
	assert.Equal(t, models.RoleMember, f.roleOf(t, member.ID))

	_, err = f.membershipRepo.GetMembershipByID(ctx, owner.ID)
	assert.Error(t, err)

	assert.Contains(t, f.registry.unregistered, owner.ID)
}

func TestLeaveOwnerFallsBackToEarliestMember(t *testing.T) {
	f := newMembershipFixture(t)

	owner := f.addMember(t, models.RoleOwner)
	first := f.addMember(t, models.RoleMember)
	f.addMember(t, models.RoleMember)

	outcome, err := f.uc.Leave(context.Background(), owner.ID)
	require.NoError(t, err)

	require.NotNil(t, outcome.NewOwner)
	assert.Equal(t, first.ID, outcome.NewOwner.ID)
	assert.Equal(t, models.RoleOwner, f.roleOf(t, first.ID))
}

func TestLeaveLastMemberDeletesRoom(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()

	owner := f.addMember(t, models.RoleOwner)

	outcome, err := f.uc.Leave(ctx, owner.ID)
	require.NoError(t, err)

	assert.True(t, outcome.RoomDeleted)
	assert.Nil(t, outcome.NewOwner)

	_, err = f.roomRepo.GetRoomByID(ctx, f.room.ID)
	assert.Error(t, err)

	_, err = f.playlistRepo.GetPlaylistByID(ctx, f.room.PlaylistID)
	assert.Error(t, err)

	assert.Contains(t, f.registry.closedRooms, f.room.ID)
}

// Leave itself tells the room's live connections about the departure and
// any promotion, so callers outside a session (the HTTP leave endpoint)
// keep watching members in sync too.
func TestLeaveAnnouncesToLiveSessions(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()

	owner := f.addMember(t, models.RoleOwner)
	manager := f.addMember(t, models.RoleManager)

	_, err := f.uc.Leave(ctx, owner.ID)
	require.NoError(t, err)

	broadcasts := f.registry.broadcasts[f.room.ID]
	require.Len(t, broadcasts, 2)

	left := broadcasts[0].(events.Envelope)
	assert.Equal(t, events.TypeMember, left.Type)
	assert.Equal(t, events.ActionMemberLeft, left.Action)

	var leftEvent events.MemberLeftEvent
	require.NoError(t, json.Unmarshal(left.Data, &leftEvent))
	assert.Equal(t, owner.ID, leftEvent.Member.MembershipID)
	require.Len(t, leftEvent.Roster, 1)
	assert.Equal(t, manager.ID, leftEvent.Roster[0].MembershipID)

	promoted := broadcasts[1].(events.Envelope)
	assert.Equal(t, events.ActionRoleChanged, promoted.Action)

	var roleEvent events.RoleChangedEvent
	require.NoError(t, json.Unmarshal(promoted.Data, &roleEvent))
	assert.Equal(t, manager.ID, roleEvent.MembershipID)
	assert.Equal(t, models.RoleOwner, roleEvent.NewRole)
}

func TestLeaveDeletedRoomStaysSilent(t *testing.T) {
	f := newMembershipFixture(t)

	owner := f.addMember(t, models.RoleOwner)

	outcome, err := f.uc.Leave(context.Background(), owner.ID)
	require.NoError(t, err)
	require.True(t, outcome.RoomDeleted)

	// The room's sockets were closed; nobody is left to tell.
	assert.Empty(t, f.registry.broadcasts[f.room.ID])
}

func TestLeaveNonOwnerKeepsOwnership(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()

	owner := f.addMember(t, models.RoleOwner)
	member := f.addMember(t, models.RoleMember)

	// The member joined through the request workflow; leaving finalizes it.
	request := models.NewJoinRequest(f.room.ID, member.UserID)
	request.Status = models.JoinRequestAccepted
	require.NoError(t, f.joinRepo.CreateJoinRequest(ctx, request))

	outcome, err := f.uc.Leave(ctx, member.ID)
	require.NoError(t, err)

	assert.False(t, outcome.RoomDeleted)
	assert.Nil(t, outcome.NewOwner)
	assert.Equal(t, models.RoleOwner, f.roleOf(t, owner.ID))

	stored, err := f.joinRepo.GetJoinRequestByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestLeft, stored.Status)
}

func TestLeaveUnknownMembership(t *testing.T) {
	f := newMembershipFixture(t)

	_, err := f.uc.Leave(context.Background(), uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestChangeRole(t *testing.T) {
	ctx := context.Background()

	t.Run("manager promotes a member", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.addMember(t, models.RoleOwner)
		manager := f.addMember(t, models.RoleManager)
		member := f.addMember(t, models.RoleMember)

		require.NoError(t, f.uc.ChangeRole(ctx, manager.ID, member.ID, models.RoleManager))
		assert.Equal(t, models.RoleManager, f.roleOf(t, member.ID))
	})

	t.Run("member cannot change roles", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.addMember(t, models.RoleOwner)
		actor := f.addMember(t, models.RoleMember)
		target := f.addMember(t, models.RoleMember)

		err := f.uc.ChangeRole(ctx, actor.ID, target.ID, models.RoleManager)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("owner role is immutable", func(t *testing.T) {
		f := newMembershipFixture(t)
		owner := f.addMember(t, models.RoleOwner)
		manager := f.addMember(t, models.RoleManager)

		err := f.uc.ChangeRole(ctx, manager.ID, owner.ID, models.RoleMember)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
		assert.Equal(t, models.RoleOwner, f.roleOf(t, owner.ID))
	})

	t.Run("only the owner transfers ownership", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.addMember(t, models.RoleOwner)
		manager := f.addMember(t, models.RoleManager)
		member := f.addMember(t, models.RoleMember)

		err := f.uc.ChangeRole(ctx, manager.ID, member.ID, models.RoleOwner)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("ownership transfer demotes the old owner", func(t *testing.T) {
		f := newMembershipFixture(t)
		owner := f.addMember(t, models.RoleOwner)
		member := f.addMember(t, models.RoleMember)

		require.NoError(t, f.uc.ChangeRole(ctx, owner.ID, member.ID, models.RoleOwner))
		assert.Equal(t, models.RoleOwner, f.roleOf(t, member.ID))
		assert.Equal(t, models.RoleManager, f.roleOf(t, owner.ID))
	})

	t.Run("cannot target yourself", func(t *testing.T) {
		f := newMembershipFixture(t)
		owner := f.addMember(t, models.RoleOwner)

		err := f.uc.ChangeRole(ctx, owner.ID, owner.ID, models.RoleManager)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("memberships from different rooms", func(t *testing.T) {
		f := newMembershipFixture(t)
		owner := f.addMember(t, models.RoleOwner)

		stranger := models.NewMembership(uuid.New(), uuid.New(), models.RoleMember)
		require.NoError(t, f.membershipRepo.CreateMembership(ctx, stranger))

		err := f.uc.ChangeRole(ctx, owner.ID, stranger.ID, models.RoleManager)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("unknown role", func(t *testing.T) {
		f := newMembershipFixture(t)
		owner := f.addMember(t, models.RoleOwner)
		member := f.addMember(t, models.RoleMember)

		err := f.uc.ChangeRole(ctx, owner.ID, member.ID, "dj")
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()

	t.Run("manager removes a member", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.addMember(t, models.RoleOwner)
		manager := f.addMember(t, models.RoleManager)
		member := f.addMember(t, models.RoleMember)

		request := models.NewJoinRequest(f.room.ID, member.UserID)
		request.Status = models.JoinRequestAccepted
		require.NoError(t, f.joinRepo.CreateJoinRequest(ctx, request))

		target, err := f.uc.RemoveMember(ctx, manager.ID, member.ID)
		require.NoError(t, err)
		assert.Equal(t, member.ID, target.ID)

		_, err = f.membershipRepo.GetMembershipByID(ctx, member.ID)
		assert.Error(t, err)

		stored, err := f.joinRepo.GetJoinRequestByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, models.JoinRequestRemoved, stored.Status)

		assert.Contains(t, f.registry.unregistered, member.ID)
	})

	t.Run("equal privilege is protected", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.addMember(t, models.RoleOwner)
		actor := f.addMember(t, models.RoleManager)
		target := f.addMember(t, models.RoleManager)

		_, err := f.uc.RemoveMember(ctx, actor.ID, target.ID)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("member cannot remove anyone", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.addMember(t, models.RoleOwner)
		actor := f.addMember(t, models.RoleMember)
		target := f.addMember(t, models.RoleMember)

		_, err := f.uc.RemoveMember(ctx, actor.ID, target.ID)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("owner removes a manager", func(t *testing.T) {
		f := newMembershipFixture(t)
		owner := f.addMember(t, models.RoleOwner)
		manager := f.addMember(t, models.RoleManager)

		_, err := f.uc.RemoveMember(ctx, owner.ID, manager.ID)
		require.NoError(t, err)
	})

	t.Run("cannot remove yourself", func(t *testing.T) {
		f := newMembershipFixture(t)
		owner := f.addMember(t, models.RoleOwner)

		_, err := f.uc.RemoveMember(ctx, owner.ID, owner.ID)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})
}

func TestRosterRequiresMembership(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()

	owner := f.addMember(t, models.RoleOwner)
	f.addMember(t, models.RoleMember)

	roster, err := f.uc.Roster(ctx, owner.UserID, f.room.ID)
	require.NoError(t, err)
	assert.Len(t, roster, 2)

	_, err = f.uc.Roster(ctx, uuid.New(), f.room.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}
