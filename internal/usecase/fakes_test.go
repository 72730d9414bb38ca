package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roomwarden/roomwarden/internal/domain/models"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/platform"
)

type guildUserKey struct {
	guildID int64
	userID  int64
}

// --- room repository ---

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[int64]*models.Room

	failCreate error
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[int64]*models.Room)}
}

func (f *fakeRoomRepo) Create(_ context.Context, room *models.Room) error {
	if f.failCreate != nil {
		return f.failCreate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	room.CreatedAt = time.Now()
	copied := *room
	f.rooms[room.ChannelID] = &copied

	return nil
}

func (f *fakeRoomRepo) Get(_ context.Context, channelID int64) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	room, ok := f.rooms[channelID]
	if !ok {
		return nil, nil
	}

	copied := *room

	return &copied, nil
}

func (f *fakeRoomRepo) GetByOwner(_ context.Context, guildID, ownerID int64) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, room := range f.rooms {
		if room.GuildID == guildID && room.OwnerID == ownerID {
			copied := *room
			return &copied, nil
		}
	}

	return nil, nil
}

func (f *fakeRoomRepo) ListAll(_ context.Context) ([]*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rooms := make([]*models.Room, 0, len(f.rooms))
	for _, room := range f.rooms {
		copied := *room
		rooms = append(rooms, &copied)
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ChannelID < rooms[j].ChannelID })

	return rooms, nil
}

func (f *fakeRoomRepo) UpdateOwner(_ context.Context, channelID, ownerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if room, ok := f.rooms[channelID]; ok {
		room.OwnerID = ownerID
	}

	return nil
}

func (f *fakeRoomRepo) UpdateName(_ context.Context, channelID int64, name string, tags models.Tags) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if room, ok := f.rooms[channelID]; ok {
		room.Name = &name
		room.Tags = tags
	}

	return nil
}

func (f *fakeRoomRepo) UpdateTags(_ context.Context, channelID int64, tags models.Tags) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if room, ok := f.rooms[channelID]; ok {
		room.Tags = tags
	}

	return nil
}

func (f *fakeRoomRepo) Delete(_ context.Context, channelID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.rooms, channelID)

	return nil
}

// --- mute repository ---

type fakeMuteRepo struct {
	mu      sync.Mutex
	records []*models.MuteRecord
}

func newFakeMuteRepo() *fakeMuteRepo {
	return &fakeMuteRepo{}
}

func (f *fakeMuteRepo) Create(_ context.Context, rec *models.MuteRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec.ID = uuid.New()
	rec.MutedAt = time.Now()
	copied := *rec
	f.records = append(f.records, &copied)

	return nil
}

func (f *fakeMuteRepo) GetActive(_ context.Context, channelID, userID int64) (*models.MuteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.records) - 1; i >= 0; i-- {
		rec := f.records[i]
		if rec.ChannelID == channelID && rec.MutedUserID == userID && rec.Active() {
			copied := *rec
			return &copied, nil
		}
	}

	return nil, nil
}

func (f *fakeMuteRepo) ListActiveForRoom(_ context.Context, channelID int64) ([]*models.MuteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var active []*models.MuteRecord

	for _, rec := range f.records {
		if rec.ChannelID == channelID && rec.Active() {
			copied := *rec
			active = append(active, &copied)
		}
	}

	return active, nil
}

func (f *fakeMuteRepo) Close(_ context.Context, channelID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	closed := false

	for _, rec := range f.records {
		if rec.ChannelID == channelID && rec.MutedUserID == userID && rec.Active() {
			now := time.Now()
			rec.UnmutedAt = &now
			closed = true
		}
	}

	return closed, nil
}

// --- global mute repository ---

type fakeGlobalMuteRepo struct {
	mu     sync.Mutex
	active map[guildUserKey]bool
}

func newFakeGlobalMuteRepo() *fakeGlobalMuteRepo {
	return &fakeGlobalMuteRepo{active: make(map[guildUserKey]bool)}
}

func (f *fakeGlobalMuteRepo) Record(_ context.Context, guildID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.active[guildUserKey{guildID, userID}] = true

	return nil
}

func (f *fakeGlobalMuteRepo) IsActive(_ context.Context, guildID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.active[guildUserKey{guildID, userID}], nil
}

func (f *fakeGlobalMuteRepo) Clear(_ context.Context, guildID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := guildUserKey{guildID, userID}
	was := f.active[key]
	delete(f.active, key)

	return was, nil
}

// --- spam repository ---

type fakeSpamRepo struct {
	mu       sync.Mutex
	statuses map[guildUserKey]*models.SpamStatus
}

func newFakeSpamRepo() *fakeSpamRepo {
	return &fakeSpamRepo{statuses: make(map[guildUserKey]*models.SpamStatus)}
}

func (f *fakeSpamRepo) Get(_ context.Context, guildID, userID int64) (*models.SpamStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	status, ok := f.statuses[guildUserKey{guildID, userID}]
	if !ok {
		return nil, nil
	}

	copied := *status

	return &copied, nil
}

func (f *fakeSpamRepo) IncrementInfraction(_ context.Context, guildID, userID int64) (*models.SpamStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := guildUserKey{guildID, userID}

	status, ok := f.statuses[key]
	if !ok {
		status = &models.SpamStatus{GuildID: guildID, UserID: userID, CreatedAt: time.Now()}
		f.statuses[key] = status
	}

	if status.CurrentLevel < 7 {
		status.CurrentLevel++
	}

	now := time.Now()
	status.LastInfractionAt = &now
	status.TotalInfractions++
	status.UpdatedAt = now

	copied := *status

	return &copied, nil
}

func (f *fakeSpamRepo) ResetLevel(_ context.Context, guildID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if status, ok := f.statuses[guildUserKey{guildID, userID}]; ok {
		status.CurrentLevel = 0
	}

	return nil
}

func (f *fakeSpamRepo) ResetStale(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var reset int64

	for _, status := range f.statuses {
		if status.CurrentLevel > 0 && status.LastInfractionAt != nil && status.LastInfractionAt.Before(cutoff) {
			status.CurrentLevel = 0
			reset++
		}
	}

	return reset, nil
}

// --- preference repository ---

type prefKey struct {
	guildID int64
	userID  int64
	kind    models.RoomKind
}

type fakePreferenceRepo struct {
	mu        sync.Mutex
	prefs     map[prefKey]*models.RoomPreference
	deadlines map[int64]*models.PendingDeadline
}

func newFakePreferenceRepo() *fakePreferenceRepo {
	return &fakePreferenceRepo{
		prefs:     make(map[prefKey]*models.RoomPreference),
		deadlines: make(map[int64]*models.PendingDeadline),
	}
}

func (f *fakePreferenceRepo) Get(_ context.Context, guildID, userID int64, kind models.RoomKind) (*models.RoomPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pref, ok := f.prefs[prefKey{guildID, userID, kind}]
	if !ok {
		return nil, nil
	}

	copied := *pref

	return &copied, nil
}

func (f *fakePreferenceRepo) Upsert(_ context.Context, pref *models.RoomPreference) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *pref
	f.prefs[prefKey{pref.GuildID, pref.UserID, pref.Kind}] = &copied

	return nil
}

func (f *fakePreferenceRepo) UpsertDeadline(_ context.Context, d *models.PendingDeadline) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *d
	f.deadlines[d.ChannelID] = &copied

	return nil
}

func (f *fakePreferenceRepo) RemoveDeadline(_ context.Context, channelID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.deadlines[channelID]
	delete(f.deadlines, channelID)

	return ok, nil
}

func (f *fakePreferenceRepo) ListExpiredDeadlines(_ context.Context, now time.Time) ([]*models.PendingDeadline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var expired []*models.PendingDeadline

	for _, d := range f.deadlines {
		if !d.DeadlineAt.After(now) {
			copied := *d
			expired = append(expired, &copied)
		}
	}

	return expired, nil
}

// --- guild config repository ---

type fakeGuildConfigRepo struct {
	mu   sync.Mutex
	cfgs map[int64]*models.GuildConfig
}

func newFakeGuildConfigRepo() *fakeGuildConfigRepo {
	return &fakeGuildConfigRepo{cfgs: make(map[int64]*models.GuildConfig)}
}

func (f *fakeGuildConfigRepo) Get(_ context.Context, guildID int64) (*models.GuildConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cfg, ok := f.cfgs[guildID]
	if !ok {
		return nil, nil
	}

	copied := *cfg

	return &copied, nil
}

func (f *fakeGuildConfigRepo) FindByTrigger(_ context.Context, channelID int64) (*models.GuildConfig, models.RoomKind, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, cfg := range f.cfgs {
		if cfg.CasualTriggerID != nil && *cfg.CasualTriggerID == channelID {
			copied := *cfg
			return &copied, models.KindCasual, nil
		}

		if cfg.FocusTriggerID != nil && *cfg.FocusTriggerID == channelID {
			copied := *cfg
			return &copied, models.KindFocus, nil
		}
	}

	return nil, "", nil
}

func (f *fakeGuildConfigRepo) ListConfigured(_ context.Context) ([]*models.GuildConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var cfgs []*models.GuildConfig

	for _, cfg := range f.cfgs {
		if cfg.CasualTriggerID != nil || cfg.FocusTriggerID != nil {
			copied := *cfg
			cfgs = append(cfgs, &copied)
		}
	}

	sort.Slice(cfgs, func(i, j int) bool { return cfgs[i].GuildID < cfgs[j].GuildID })

	return cfgs, nil
}

func (f *fakeGuildConfigRepo) Upsert(_ context.Context, cfg *models.GuildConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *cfg
	f.cfgs[cfg.GuildID] = &copied

	return nil
}

// --- platform gateway ---

type serverMuteCall struct {
	GuildID int64
	UserID  int64
	Muted   bool
}

type timeoutCall struct {
	GuildID int64
	UserID  int64
	Until   time.Time
}

type permCall struct {
	ChannelID int64
	UserID    int64
	Allowed   bool
}

type fakeGateway struct {
	mu sync.Mutex

	nextChannelID int64
	created       []platform.CreateRoomParams
	deleted       []int64
	renamed       map[int64]string
	statuses      map[int64]string
	existing      map[int64]bool
	members       map[int64][]platform.Member
	currentRoom   map[guildUserKey]int64
	serverMutes   []serverMuteCall
	timeouts      []timeoutCall
	perms         []permCall
	moved         []int64

	failCreate  error
	failDelete  error
	failMembers error
	failCurrent error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		nextChannelID: 9000,
		renamed:       make(map[int64]string),
		statuses:      make(map[int64]string),
		existing:      make(map[int64]bool),
		members:       make(map[int64][]platform.Member),
		currentRoom:   make(map[guildUserKey]int64),
	}
}

func (f *fakeGateway) CreateVoiceRoom(_ context.Context, p platform.CreateRoomParams) (int64, error) {
	if f.failCreate != nil {
		return 0, f.failCreate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextChannelID++
	f.created = append(f.created, p)
	f.existing[f.nextChannelID] = true

	return f.nextChannelID, nil
}

func (f *fakeGateway) EditRoomName(_ context.Context, channelID int64, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.renamed[channelID] = name

	return nil
}

func (f *fakeGateway) SetRoomStatus(_ context.Context, channelID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statuses[channelID] = status

	return nil
}

func (f *fakeGateway) DeleteRoom(_ context.Context, channelID int64) error {
	if f.failDelete != nil {
		return f.failDelete
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, channelID)
	delete(f.existing, channelID)

	return nil
}

func (f *fakeGateway) RoomExists(_ context.Context, channelID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.existing[channelID], nil
}

func (f *fakeGateway) SetServerMute(_ context.Context, guildID, userID int64, muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.serverMutes = append(f.serverMutes, serverMuteCall{guildID, userID, muted})

	return nil
}

func (f *fakeGateway) SetMutePermission(_ context.Context, channelID, userID int64, allowed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.perms = append(f.perms, permCall{channelID, userID, allowed})

	return nil
}

func (f *fakeGateway) MoveMember(_ context.Context, _, userID, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.moved = append(f.moved, userID)

	return nil
}

func (f *fakeGateway) DisconnectMember(_ context.Context, _, _ int64) error {
	return nil
}

func (f *fakeGateway) TimeoutMember(_ context.Context, guildID, userID int64, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.timeouts = append(f.timeouts, timeoutCall{guildID, userID, until})

	return nil
}

func (f *fakeGateway) RoomMembers(_ context.Context, _, channelID int64) ([]platform.Member, error) {
	if f.failMembers != nil {
		return nil, f.failMembers
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.members[channelID], nil
}

func (f *fakeGateway) CurrentRoom(_ context.Context, guildID, userID int64) (int64, error) {
	if f.failCurrent != nil {
		return 0, f.failCurrent
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.currentRoom[guildUserKey{guildID, userID}], nil
}

func (f *fakeGateway) setCurrentRoom(guildID, userID, channelID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.currentRoom[guildUserKey{guildID, userID}] = channelID
}

func (f *fakeGateway) serverMuteCalls() []serverMuteCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]serverMuteCall(nil), f.serverMutes...)
}

func (f *fakeGateway) timeoutCalls() []timeoutCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]timeoutCall(nil), f.timeouts...)
}

func (f *fakeGateway) createdRooms() []platform.CreateRoomParams {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]platform.CreateRoomParams(nil), f.created...)
}

func (f *fakeGateway) deletedRooms() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int64(nil), f.deleted...)
}

// --- notifier ---

type sentMessage struct {
	Target int64
	Msg    platform.Message
}

type fakeNotifier struct {
	mu       sync.Mutex
	roomMsgs []sentMessage
	dms      []sentMessage
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{}
}

func (f *fakeNotifier) SendRoomMessage(_ context.Context, channelID int64, msg platform.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.roomMsgs = append(f.roomMsgs, sentMessage{channelID, msg})

	return nil
}

func (f *fakeNotifier) SendDirectMessage(_ context.Context, userID int64, msg platform.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.dms = append(f.dms, sentMessage{userID, msg})

	return nil
}

func (f *fakeNotifier) roomMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]sentMessage(nil), f.roomMsgs...)
}

func (f *fakeNotifier) directMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]sentMessage(nil), f.dms...)
}
