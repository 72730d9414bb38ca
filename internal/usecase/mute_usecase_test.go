package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomwarden/roomwarden/internal/domain/models"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/memory"
)

type muteFixture struct {
	muteRepo       *fakeMuteRepo
	globalMuteRepo *fakeGlobalMuteRepo
	roomRepo       *fakeRoomRepo
	pending        memory.PendingUnmuteRegistry
	gateway        *fakeGateway

	uc *muteUsecase
}

func newMuteFixture(t *testing.T) *muteFixture {
	t.Helper()

	f := &muteFixture{
		muteRepo:       newFakeMuteRepo(),
		globalMuteRepo: newFakeGlobalMuteRepo(),
		roomRepo:       newFakeRoomRepo(),
		pending:        memory.NewPendingUnmuteRegistry(),
		gateway:        newFakeGateway(),
	}

	uc := NewMuteUsecase(f.muteRepo, f.globalMuteRepo, f.roomRepo, f.pending, f.gateway, time.Millisecond)
	f.uc = uc.(*muteUsecase)

	// Tests drive the delayed task directly; the scheduled goroutine must
	// not race with them.
	f.uc.sleep = func(context.Context, time.Duration) {}

	return f
}

func (f *muteFixture) addRoom(t *testing.T, channelID, guildID, ownerID int64) *models.Room {
	t.Helper()

	room := &models.Room{ChannelID: channelID, GuildID: guildID, OwnerID: ownerID, Kind: models.KindCasual}
	require.NoError(t, f.roomRepo.Create(context.Background(), room))

	return room
}

func TestHandleMuteDetected_InManagedRoom(t *testing.T) {
	f := newMuteFixture(t)
	f.addRoom(t, 500, 1, 10)

	require.NoError(t, f.uc.HandleMuteDetected(context.Background(), 1, 20, 500))

	rec, err := f.muteRepo.GetActive(context.Background(), 500, 20)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(10), rec.MutedByUserID)
	assert.False(t, rec.IsAdminMute)

	// No global mute: the room owner did this.
	global, err := f.globalMuteRepo.IsActive(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.False(t, global)
}

func TestHandleMuteDetected_DuplicateIsIgnored(t *testing.T) {
	f := newMuteFixture(t)
	f.addRoom(t, 500, 1, 10)

	require.NoError(t, f.uc.HandleMuteDetected(context.Background(), 1, 20, 500))
	require.NoError(t, f.uc.HandleMuteDetected(context.Background(), 1, 20, 500))

	assert.Len(t, f.muteRepo.records, 1)
}

func TestHandleMuteDetected_OutsideManagedRoom(t *testing.T) {
	f := newMuteFixture(t)

	require.NoError(t, f.uc.HandleMuteDetected(context.Background(), 1, 20, 777))

	global, err := f.globalMuteRepo.IsActive(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.True(t, global)
	assert.Empty(t, f.muteRepo.records)
}

func TestHandleUnmuteDetected_ConsumesPendingMarker(t *testing.T) {
	f := newMuteFixture(t)
	f.addRoom(t, 500, 1, 10)

	require.NoError(t, f.uc.MuteUser(context.Background(), 1, 500, 20, 10, false))

	// The bot just lifted the platform mute itself; the record stays open.
	f.pending.Mark(context.Background(), 1, 20)

	require.NoError(t, f.uc.HandleUnmuteDetected(context.Background(), 1, 20, 500))

	rec, err := f.muteRepo.GetActive(context.Background(), 500, 20)
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestHandleUnmuteDetected_ManualUnmuteClosesRecordAndGlobal(t *testing.T) {
	f := newMuteFixture(t)
	f.addRoom(t, 500, 1, 10)

	require.NoError(t, f.uc.MuteUser(context.Background(), 1, 500, 20, 10, false))
	require.NoError(t, f.globalMuteRepo.Record(context.Background(), 1, 20))

	require.NoError(t, f.uc.HandleUnmuteDetected(context.Background(), 1, 20, 500))

	rec, err := f.muteRepo.GetActive(context.Background(), 500, 20)
	require.NoError(t, err)
	assert.Nil(t, rec)

	global, err := f.globalMuteRepo.IsActive(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.False(t, global)
}

func TestHandleUnmuteDetected_OtherRoomRecordStaysOpen(t *testing.T) {
	f := newMuteFixture(t)
	f.addRoom(t, 500, 1, 10)
	f.addRoom(t, 501, 1, 11)

	require.NoError(t, f.uc.MuteUser(context.Background(), 1, 500, 20, 10, false))

	// Unmuted while in a different room: only that room's records close.
	require.NoError(t, f.uc.HandleUnmuteDetected(context.Background(), 1, 20, 501))

	rec, err := f.muteRepo.GetActive(context.Background(), 500, 20)
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestHandleMutedMemberLeft_AdminMuteNotScheduled(t *testing.T) {
	f := newMuteFixture(t)
	f.addRoom(t, 500, 1, 10)

	require.NoError(t, f.uc.MuteUser(context.Background(), 1, 500, 20, 10, true))

	scheduled := false
	f.uc.sleep = func(context.Context, time.Duration) { scheduled = true }

	require.NoError(t, f.uc.HandleMutedMemberLeft(context.Background(), 1, 20, 500))

	time.Sleep(20 * time.Millisecond)
	assert.False(t, scheduled)
}

func TestRunDelayedUnmute_LiftsMuteKeepsRecord(t *testing.T) {
	f := newMuteFixture(t)
	f.addRoom(t, 500, 1, 10)

	require.NoError(t, f.uc.MuteUser(context.Background(), 1, 500, 20, 10, false))

	f.uc.runDelayedUnmute(context.Background(), delayedUnmute{GuildID: 1, UserID: 20, ChannelID: 500})

	calls := f.gateway.serverMuteCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, serverMuteCall{1, 20, true}, calls[0])
	assert.Equal(t, serverMuteCall{1, 20, false}, calls[1])

	// The record survives so the mute is reapplied on re-entry.
	rec, err := f.muteRepo.GetActive(context.Background(), 500, 20)
	require.NoError(t, err)
	assert.NotNil(t, rec)

	// The lift is marked as bot-initiated for the event handler.
	assert.True(t, f.pending.Consume(context.Background(), 1, 20))
}

func TestRunDelayedUnmute_GlobalMuteBlocks(t *testing.T) {
	f := newMuteFixture(t)
	f.addRoom(t, 500, 1, 10)

	require.NoError(t, f.uc.MuteUser(context.Background(), 1, 500, 20, 10, false))
	require.NoError(t, f.globalMuteRepo.Record(context.Background(), 1, 20))

	f.uc.runDelayedUnmute(context.Background(), delayedUnmute{GuildID: 1, UserID: 20, ChannelID: 500})

	// Only the original mute call, no lift.
	assert.Len(t, f.gateway.serverMuteCalls(), 1)
	assert.False(t, f.pending.Consume(context.Background(), 1, 20))
}

func TestRunDelayedUnmute_KeptWhenMutedInCurrentRoom(t *testing.T) {
	f := newMuteFixture(t)
	f.addRoom(t, 500, 1, 10)
	f.addRoom(t, 501, 1, 11)

	require.NoError(t, f.uc.MuteUser(context.Background(), 1, 500, 20, 10, false))
	require.NoError(t, f.uc.MuteUser(context.Background(), 1, 501, 20, 11, false))

	// Left room 500 but is sitting in 501 where another mute is active.
	f.gateway.setCurrentRoom(1, 20, 501)

	f.uc.runDelayedUnmute(context.Background(), delayedUnmute{GuildID: 1, UserID: 20, ChannelID: 500})

	// Two mute applications, no lift.
	calls := f.gateway.serverMuteCalls()
	require.Len(t, calls, 2)
	for _, c := range calls {
		assert.True(t, c.Muted)
	}
}

func TestRunDelayedUnmute_HoppedToCleanRoom(t *testing.T) {
	f := newMuteFixture(t)
	f.addRoom(t, 500, 1, 10)
	f.addRoom(t, 501, 1, 11)

	require.NoError(t, f.uc.MuteUser(context.Background(), 1, 500, 20, 10, false))
	f.gateway.setCurrentRoom(1, 20, 501)

	f.uc.runDelayedUnmute(context.Background(), delayedUnmute{GuildID: 1, UserID: 20, ChannelID: 500})

	calls := f.gateway.serverMuteCalls()
	require.Len(t, calls, 2)
	assert.False(t, calls[1].Muted)
}

func TestRunDelayedUnmute_GlobalCheckErrorAssumesMuted(t *testing.T) {
	f := newMuteFixture(t)

	fails := &failingGlobalMuteRepo{err: assert.AnError}
	uc := NewMuteUsecase(f.muteRepo, fails, f.roomRepo, f.pending, f.gateway, time.Millisecond).(*muteUsecase)

	uc.runDelayedUnmute(context.Background(), delayedUnmute{GuildID: 1, UserID: 20, ChannelID: 500})

	assert.Empty(t, f.gateway.serverMuteCalls())
}

func TestReapplyOnJoin(t *testing.T) {
	f := newMuteFixture(t)
	f.addRoom(t, 500, 1, 10)

	require.NoError(t, f.uc.MuteUser(context.Background(), 1, 500, 20, 10, false))
	f.gateway.serverMutes = nil

	require.NoError(t, f.uc.ReapplyOnJoin(context.Background(), 1, 20, 500))

	calls := f.gateway.serverMuteCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, serverMuteCall{1, 20, true}, calls[0])

	// No record in this room, nothing to reapply.
	f.gateway.serverMutes = nil
	require.NoError(t, f.uc.ReapplyOnJoin(context.Background(), 1, 21, 500))
	assert.Empty(t, f.gateway.serverMuteCalls())
}

func TestUnmuteUser_Idempotent(t *testing.T) {
	f := newMuteFixture(t)
	f.addRoom(t, 500, 1, 10)

	require.NoError(t, f.uc.MuteUser(context.Background(), 1, 500, 20, 10, false))

	lifted, err := f.uc.UnmuteUser(context.Background(), 1, 500, 20)
	require.NoError(t, err)
	assert.True(t, lifted)

	lifted, err = f.uc.UnmuteUser(context.Background(), 1, 500, 20)
	require.NoError(t, err)
	assert.False(t, lifted)
}

// failingGlobalMuteRepo errors on every call.
type failingGlobalMuteRepo struct {
	err error
}

func (f *failingGlobalMuteRepo) Record(context.Context, int64, int64) error { return f.err }

func (f *failingGlobalMuteRepo) IsActive(context.Context, int64, int64) (bool, error) {
	return false, f.err
}

func (f *failingGlobalMuteRepo) Clear(context.Context, int64, int64) (bool, error) {
	return false, f.err
}
