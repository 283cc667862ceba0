package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
)

// testRepos 测试用内存仓储聚合
// 各 mock 之间共享引用以模拟 Preload 行为
type testRepos struct {
	users         *mockUserRepo
	groups        *mockGroupRepo
	activities    *mockActivityRepo
	blocks        *mockBlockRepo
	scheduled     *mockScheduledActivityRepo
	signups       *mockSignupRepo
	notifications *mockNotificationRepo

	repo *repository.Repository
}

func newTestRepos() *testRepos {
	users := newMockUserRepo()
	groups := newMockGroupRepo()
	activities := newMockActivityRepo()
	blocks := newMockBlockRepo()
	scheduled := newMockScheduledActivityRepo(blocks, activities)
	signups := newMockSignupRepo(users, blocks, scheduled)
	notifications := newMockNotificationRepo()

	return &testRepos{
		users:         users,
		groups:        groups,
		activities:    activities,
		blocks:        blocks,
		scheduled:     scheduled,
		signups:       signups,
		notifications: notifications,
		repo: &repository.Repository{
			User:              users,
			Group:             groups,
			Activity:          activities,
			Block:             blocks,
			ScheduledActivity: scheduled,
			Signup:            signups,
			Notification:      notifications,
		},
	}
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok && u.DeletedAt == nil {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username && u.DeletedAt == nil {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if u.DeletedAt != nil {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, deletedBy string) error {
	if u, ok := m.users[id]; ok {
		now := time.Now()
		u.DeletedAt = &now
		u.DeletedBy = &deletedBy
	}
	return nil
}

// ── Mock GroupRepository ──

type mockGroupRepo struct {
	groups  map[string]*model.Group
	members map[string][]model.User
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{
		groups:  make(map[string]*model.Group),
		members: make(map[string][]model.User),
	}
}

func (m *mockGroupRepo) Create(_ context.Context, group *model.Group) error {
	if group.GroupID == "" {
		group.GroupID = "group-" + group.Name
	}
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) List(_ context.Context) ([]model.Group, error) {
	var result []model.Group
	for _, g := range m.groups {
		result = append(result, *g)
	}
	return result, nil
}

func (m *mockGroupRepo) ListMembers(_ context.Context, groupID string) ([]model.User, error) {
	return m.members[groupID], nil
}

func (m *mockGroupRepo) AddMember(_ context.Context, groupID, userID string) error {
	m.members[groupID] = append(m.members[groupID], model.User{UserID: userID})
	return nil
}

func (m *mockGroupRepo) RemoveMember(_ context.Context, groupID, userID string) error {
	kept := m.members[groupID][:0]
	for _, u := range m.members[groupID] {
		if u.UserID != userID {
			kept = append(kept, u)
		}
	}
	m.members[groupID] = kept
	return nil
}

func (m *mockGroupRepo) Update(_ context.Context, group *model.Group) error {
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) Delete(_ context.Context, id string) error {
	delete(m.groups, id)
	delete(m.members, id)
	return nil
}

// ── Mock ActivityRepository ──

type mockActivityRepo struct {
	activities map[string]*model.Activity
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{activities: make(map[string]*model.Activity)}
}

func (m *mockActivityRepo) Create(_ context.Context, activity *model.Activity) error {
	if activity.ActivityID == "" {
		activity.ActivityID = "act-" + activity.Name
	}
	if activity.Status == "" {
		activity.Status = model.ActivityStatusActive
	}
	m.activities[activity.ActivityID] = activity
	return nil
}

func (m *mockActivityRepo) GetByID(_ context.Context, id string) (*model.Activity, error) {
	if a, ok := m.activities[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockActivityRepo) List(_ context.Context, includeDeleted bool, offset, limit int) ([]model.Activity, int64, error) {
	var result []model.Activity
	for _, a := range m.activities {
		if !includeDeleted && a.IsDeleted() {
			continue
		}
		result = append(result, *a)
	}
	return result, int64(len(result)), nil
}

func (m *mockActivityRepo) Update(_ context.Context, activity *model.Activity) error {
	m.activities[activity.ActivityID] = activity
	return nil
}

func (m *mockActivityRepo) SoftDelete(_ context.Context, id string, _ string) error {
	if a, ok := m.activities[id]; ok {
		a.Status = model.ActivityStatusDeleted
	}
	return nil
}

func (m *mockActivityRepo) Restore(_ context.Context, id string, _ string) error {
	if a, ok := m.activities[id]; ok {
		a.Status = model.ActivityStatusActive
	}
	return nil
}

func (m *mockActivityRepo) HardDelete(_ context.Context, id string) error {
	delete(m.activities, id)
	return nil
}

func (m *mockActivityRepo) ReplaceRooms(_ context.Context, activityID string, roomIDs []string) error {
	if a, ok := m.activities[activityID]; ok {
		a.Rooms = nil
		for _, id := range roomIDs {
			a.Rooms = append(a.Rooms, model.Room{RoomID: id})
		}
	}
	return nil
}

func (m *mockActivityRepo) ReplaceSponsors(_ context.Context, activityID string, sponsorIDs []string) error {
	if a, ok := m.activities[activityID]; ok {
		a.Sponsors = nil
		for _, id := range sponsorIDs {
			a.Sponsors = append(a.Sponsors, model.Sponsor{SponsorID: id})
		}
	}
	return nil
}

func (m *mockActivityRepo) ReplaceGroupsAllowed(_ context.Context, activityID string, groupIDs []string) error {
	if a, ok := m.activities[activityID]; ok {
		a.GroupsAllowed = nil
		for _, id := range groupIDs {
			a.GroupsAllowed = append(a.GroupsAllowed, model.Group{GroupID: id})
		}
	}
	return nil
}

func (m *mockActivityRepo) ReplaceUsersAllowed(_ context.Context, activityID string, userIDs []string) error {
	if a, ok := m.activities[activityID]; ok {
		a.UsersAllowed = nil
		for _, id := range userIDs {
			a.UsersAllowed = append(a.UsersAllowed, model.User{UserID: id})
		}
	}
	return nil
}

func (m *mockActivityRepo) ReplaceUsersBlacklisted(_ context.Context, activityID string, userIDs []string) error {
	if a, ok := m.activities[activityID]; ok {
		a.UsersBlacklisted = nil
		for _, id := range userIDs {
			a.UsersBlacklisted = append(a.UsersBlacklisted, model.User{UserID: id})
		}
	}
	return nil
}

// ── Mock BlockRepository ──

type mockBlockRepo struct {
	blocks map[string]*model.Block
	seq    int
}

func newMockBlockRepo() *mockBlockRepo {
	return &mockBlockRepo{blocks: make(map[string]*model.Block)}
}

func (m *mockBlockRepo) Create(_ context.Context, block *model.Block) error {
	if block.BlockID == "" {
		m.seq++
		block.BlockID = fmt.Sprintf("block-%d", m.seq)
	}
	m.blocks[block.BlockID] = block
	return nil
}

func (m *mockBlockRepo) BatchCreate(ctx context.Context, blocks []model.Block) (int64, error) {
	var created int64
	for i := range blocks {
		b := blocks[i]
		if _, err := m.GetByDateLetter(ctx, b.Date, b.BlockLetter); err == nil {
			continue
		}
		if err := m.Create(ctx, &b); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (m *mockBlockRepo) GetByID(_ context.Context, id string) (*model.Block, error) {
	if b, ok := m.blocks[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBlockRepo) GetByDateLetter(_ context.Context, date time.Time, letter string) (*model.Block, error) {
	for _, b := range m.blocks {
		y1, m1, d1 := b.Date.Date()
		y2, m2, d2 := date.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 && b.BlockLetter == letter {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBlockRepo) List(_ context.Context, from, to *time.Time, offset, limit int) ([]model.Block, int64, error) {
	var result []model.Block
	for _, b := range m.blocks {
		if from != nil && b.Date.Before(*from) {
			continue
		}
		if to != nil && b.Date.After(*to) {
			continue
		}
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].BlockLetter < result[j].BlockLetter
	})
	return result, int64(len(result)), nil
}

func (m *mockBlockRepo) NextBlocks(_ context.Context, today time.Time) ([]model.Block, error) {
	var best *time.Time
	for _, b := range m.blocks {
		if b.Date.Before(today) {
			continue
		}
		if best == nil || b.Date.Before(*best) {
			d := b.Date
			best = &d
		}
	}
	if best == nil {
		return nil, nil
	}
	return m.blocksOn(*best), nil
}

func (m *mockBlockRepo) PreviousBlocks(_ context.Context, today time.Time) ([]model.Block, error) {
	var best *time.Time
	for _, b := range m.blocks {
		if !b.Date.Before(today) {
			continue
		}
		if best == nil || b.Date.After(*best) {
			d := b.Date
			best = &d
		}
	}
	if best == nil {
		return nil, nil
	}
	return m.blocksOn(*best), nil
}

func (m *mockBlockRepo) blocksOn(date time.Time) []model.Block {
	var result []model.Block
	for _, b := range m.blocks {
		if b.Date.Equal(date) {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BlockLetter < result[j].BlockLetter })
	return result
}

func (m *mockBlockRepo) SiblingsSameDay(_ context.Context, block *model.Block) ([]model.Block, error) {
	var result []model.Block
	for _, b := range m.blocks {
		if b.BlockID == block.BlockID {
			continue
		}
		if b.SameDay(block) {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockBlockRepo) Update(_ context.Context, block *model.Block) error {
	m.blocks[block.BlockID] = block
	return nil
}

func (m *mockBlockRepo) SetLocked(_ context.Context, id string, locked bool, _ string) error {
	if b, ok := m.blocks[id]; ok {
		b.Locked = locked
	}
	return nil
}

func (m *mockBlockRepo) Delete(_ context.Context, id string) error {
	delete(m.blocks, id)
	return nil
}

// ── Mock ScheduledActivityRepository ──

type mockScheduledActivityRepo struct {
	sas        map[string]*model.ScheduledActivity
	seq        int
	blocks     *mockBlockRepo
	activities *mockActivityRepo
}

func newMockScheduledActivityRepo(blocks *mockBlockRepo, activities *mockActivityRepo) *mockScheduledActivityRepo {
	return &mockScheduledActivityRepo{
		sas:        make(map[string]*model.ScheduledActivity),
		blocks:     blocks,
		activities: activities,
	}
}

// add 测试辅助：直接登记排期并挂好节次/活动指针
func (m *mockScheduledActivityRepo) add(sa *model.ScheduledActivity) *model.ScheduledActivity {
	if sa.ScheduledActivityID == "" {
		m.seq++
		sa.ScheduledActivityID = fmt.Sprintf("sa-%d", m.seq)
	}
	if sa.Status == "" {
		sa.Status = model.ScheduledStatusActive
	}
	m.attach(sa)
	m.sas[sa.ScheduledActivityID] = sa
	return sa
}

func (m *mockScheduledActivityRepo) attach(sa *model.ScheduledActivity) {
	if sa.Block == nil {
		sa.Block = m.blocks.blocks[sa.BlockID]
	}
	if sa.Activity == nil {
		sa.Activity = m.activities.activities[sa.ActivityID]
	}
}

func (m *mockScheduledActivityRepo) GetOrCreate(ctx context.Context, blockID, activityID string, actorID *string) (*model.ScheduledActivity, bool, error) {
	if sa, err := m.GetByBlockAndActivity(ctx, blockID, activityID); err == nil {
		return sa, false, nil
	}
	sa := m.add(&model.ScheduledActivity{BlockID: blockID, ActivityID: activityID})
	sa.CreatedBy = actorID
	return sa, true, nil
}

func (m *mockScheduledActivityRepo) GetByID(_ context.Context, id string) (*model.ScheduledActivity, error) {
	if sa, ok := m.sas[id]; ok {
		m.attach(sa)
		return sa, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduledActivityRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.ScheduledActivity, error) {
	return m.GetByID(ctx, id)
}

func (m *mockScheduledActivityRepo) GetByBlockAndActivity(_ context.Context, blockID, activityID string) (*model.ScheduledActivity, error) {
	for _, sa := range m.sas {
		if sa.BlockID == blockID && sa.ActivityID == activityID {
			m.attach(sa)
			return sa, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduledActivityRepo) ListByBlock(_ context.Context, blockID string) ([]model.ScheduledActivity, error) {
	var result []model.ScheduledActivity
	for _, sa := range m.sas {
		if sa.BlockID == blockID {
			m.attach(sa)
			result = append(result, *sa)
		}
	}
	return result, nil
}

func (m *mockScheduledActivityRepo) ListByActivity(_ context.Context, activityID string, offset, limit int) ([]model.ScheduledActivity, int64, error) {
	var result []model.ScheduledActivity
	for _, sa := range m.sas {
		if sa.ActivityID == activityID {
			m.attach(sa)
			result = append(result, *sa)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockScheduledActivityRepo) ListCancelledWithoutAttendance(_ context.Context, blockID string) ([]model.ScheduledActivity, error) {
	var result []model.ScheduledActivity
	for _, sa := range m.sas {
		if sa.BlockID == blockID && sa.IsCancelled() && !sa.AttendanceTaken {
			m.attach(sa)
			result = append(result, *sa)
		}
	}
	return result, nil
}

func (m *mockScheduledActivityRepo) Update(_ context.Context, sa *model.ScheduledActivity) error {
	m.sas[sa.ScheduledActivityID] = sa
	return nil
}

func (m *mockScheduledActivityRepo) SetStatus(_ context.Context, id, status string, _ string) error {
	if sa, ok := m.sas[id]; ok {
		sa.Status = status
	}
	return nil
}

func (m *mockScheduledActivityRepo) SetAttendanceTaken(_ context.Context, id string, taken bool, _ string) error {
	if sa, ok := m.sas[id]; ok {
		sa.AttendanceTaken = taken
	}
	return nil
}

func (m *mockScheduledActivityRepo) ReplaceRooms(_ context.Context, id string, roomIDs []string) error {
	if sa, ok := m.sas[id]; ok {
		sa.Rooms = nil
		for _, rid := range roomIDs {
			sa.Rooms = append(sa.Rooms, model.Room{RoomID: rid})
		}
	}
	return nil
}

func (m *mockScheduledActivityRepo) ReplaceSponsors(_ context.Context, id string, sponsorIDs []string) error {
	if sa, ok := m.sas[id]; ok {
		sa.Sponsors = nil
		for _, sid := range sponsorIDs {
			sa.Sponsors = append(sa.Sponsors, model.Sponsor{SponsorID: sid})
		}
	}
	return nil
}

func (m *mockScheduledActivityRepo) Delete(_ context.Context, id string) error {
	delete(m.sas, id)
	return nil
}

// ── Mock SignupRepository ──

type mockSignupRepo struct {
	signups map[string]*model.Signup
	seq     int
	users   *mockUserRepo
	blocks  *mockBlockRepo
	sas     *mockScheduledActivityRepo
}

func newMockSignupRepo(users *mockUserRepo, blocks *mockBlockRepo, sas *mockScheduledActivityRepo) *mockSignupRepo {
	return &mockSignupRepo{
		signups: make(map[string]*model.Signup),
		users:   users,
		blocks:  blocks,
		sas:     sas,
	}
}

func (m *mockSignupRepo) attach(sg *model.Signup) {
	if sg.User == nil {
		sg.User = m.users.users[sg.UserID]
	}
	if sg.Block == nil {
		sg.Block = m.blocks.blocks[sg.BlockID]
	}
	if sg.ScheduledActivity == nil {
		if sa, ok := m.sas.sas[sg.ScheduledActivityID]; ok {
			m.sas.attach(sa)
			sg.ScheduledActivity = sa
		}
	}
}

func (m *mockSignupRepo) Create(_ context.Context, signup *model.Signup) error {
	for _, sg := range m.signups {
		if sg.UserID == signup.UserID && sg.BlockID == signup.BlockID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	if signup.SignupID == "" {
		signup.SignupID = fmt.Sprintf("signup-%d", m.seq)
	}
	if signup.CreatedAt.IsZero() {
		signup.CreatedAt = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Second)
	}
	m.signups[signup.SignupID] = signup
	return nil
}

func (m *mockSignupRepo) GetByID(_ context.Context, id string) (*model.Signup, error) {
	if sg, ok := m.signups[id]; ok {
		m.attach(sg)
		return sg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSignupRepo) GetByUserAndBlock(_ context.Context, userID, blockID string) (*model.Signup, error) {
	for _, sg := range m.signups {
		if sg.UserID == userID && sg.BlockID == blockID {
			m.attach(sg)
			return sg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSignupRepo) ListByScheduledActivity(_ context.Context, scheduledActivityID string) ([]model.Signup, error) {
	var result []model.Signup
	for _, sg := range m.signups {
		if sg.ScheduledActivityID == scheduledActivityID {
			m.attach(sg)
			result = append(result, *sg)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockSignupRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.Signup, int64, error) {
	var result []model.Signup
	for _, sg := range m.signups {
		if sg.UserID == userID {
			m.attach(sg)
			result = append(result, *sg)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockSignupRepo) ListByUserOnDate(_ context.Context, userID string, blockIDs []string) ([]model.Signup, error) {
	inSet := make(map[string]bool, len(blockIDs))
	for _, id := range blockIDs {
		inSet[id] = true
	}
	var result []model.Signup
	for _, sg := range m.signups {
		if sg.UserID == userID && inSet[sg.BlockID] {
			m.attach(sg)
			result = append(result, *sg)
		}
	}
	return result, nil
}

func (m *mockSignupRepo) ListPendingPasses(_ context.Context, blockID string) ([]model.Signup, error) {
	var result []model.Signup
	for _, sg := range m.signups {
		if sg.BlockID == blockID && sg.IsPendingPass() {
			m.attach(sg)
			result = append(result, *sg)
		}
	}
	return result, nil
}

func (m *mockSignupRepo) ListUnsignedUsers(_ context.Context, blockID string) ([]model.User, error) {
	signed := make(map[string]bool)
	for _, sg := range m.signups {
		if sg.BlockID == blockID {
			signed[sg.UserID] = true
		}
	}
	var result []model.User
	for _, u := range m.users.users {
		if u.Role == model.RoleStudent && u.DeletedAt == nil && !signed[u.UserID] {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockSignupRepo) ListDuplicates(_ context.Context) ([]repository.DuplicateSignup, error) {
	counts := make(map[[2]string]int64)
	for _, sg := range m.signups {
		counts[[2]string{sg.UserID, sg.BlockID}]++
	}
	var result []repository.DuplicateSignup
	for key, n := range counts {
		if n > 1 {
			result = append(result, repository.DuplicateSignup{UserID: key[0], BlockID: key[1], Count: n})
		}
	}
	return result, nil
}

func (m *mockSignupRepo) ListByUserAndBlockAll(_ context.Context, userID, blockID string) ([]model.Signup, error) {
	var result []model.Signup
	for _, sg := range m.signups {
		if sg.UserID == userID && sg.BlockID == blockID {
			result = append(result, *sg)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockSignupRepo) CountByScheduledActivity(_ context.Context, scheduledActivityID string) (int64, error) {
	var count int64
	for _, sg := range m.signups {
		if sg.ScheduledActivityID == scheduledActivityID {
			count++
		}
	}
	return count, nil
}

func (m *mockSignupRepo) CountAbsences(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, sg := range m.signups {
		if sg.UserID == userID && sg.WasAbsent && !sg.ArchivedWasAbsent {
			count++
		}
	}
	return count, nil
}

func (m *mockSignupRepo) CountAbsencesBatch(ctx context.Context, userIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(userIDs))
	for _, id := range userIDs {
		n, _ := m.CountAbsences(ctx, id)
		result[id] = n
	}
	return result, nil
}

func (m *mockSignupRepo) Update(_ context.Context, signup *model.Signup) error {
	m.signups[signup.SignupID] = signup
	return nil
}

func (m *mockSignupRepo) SetAbsent(_ context.Context, id string, absent bool, _ string) error {
	if sg, ok := m.signups[id]; ok {
		sg.WasAbsent = absent
	}
	return nil
}

func (m *mockSignupRepo) SetPassAccepted(_ context.Context, id string, accepted bool, _ string) error {
	if sg, ok := m.signups[id]; ok {
		sg.PassAccepted = accepted
	}
	return nil
}

func (m *mockSignupRepo) Delete(_ context.Context, id string) error {
	delete(m.signups, id)
	return nil
}

func (m *mockSignupRepo) ArchiveAbsences(_ context.Context) (int64, error) {
	var archived int64
	for _, sg := range m.signups {
		if sg.WasAbsent && !sg.ArchivedWasAbsent {
			sg.WasAbsent = false
			sg.ArchivedWasAbsent = true
			archived++
		}
	}
	return archived, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []model.Notification
	prefs         map[string]*model.NotificationPreference
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{prefs: make(map[string]*model.NotificationPreference)}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	m.seq++
	if notification.NotificationID == "" {
		notification.NotificationID = fmt.Sprintf("notify-%d", m.seq)
	}
	m.notifications = append(m.notifications, *notification)
	return nil
}

func (m *mockNotificationRepo) BatchCreate(ctx context.Context, notifications []model.Notification) error {
	for i := range notifications {
		if err := m.Create(ctx, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, n)
	}
	return result, int64(len(result)), nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, userID string, notificationIDs []string) error {
	inSet := make(map[string]bool, len(notificationIDs))
	for _, id := range notificationIDs {
		inSet[id] = true
	}
	for i := range m.notifications {
		if m.notifications[i].UserID == userID && inSet[m.notifications[i].NotificationID] {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for i := range m.notifications {
		if m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) Delete(_ context.Context, userID, notificationID string) error {
	kept := m.notifications[:0]
	for _, n := range m.notifications {
		if n.UserID == userID && n.NotificationID == notificationID {
			continue
		}
		kept = append(kept, n)
	}
	m.notifications = kept
	return nil
}

func (m *mockNotificationRepo) GetPreference(_ context.Context, userID string) (*model.NotificationPreference, error) {
	if p, ok := m.prefs[userID]; ok {
		return p, nil
	}
	return &model.NotificationPreference{
		UserID:            userID,
		ActivityCancelled: true,
		RoomChanged:       true,
		SignupTransferred: true,
		Absence:           true,
		SignupReminder:    true,
	}, nil
}

func (m *mockNotificationRepo) UpsertPreference(_ context.Context, pref *model.NotificationPreference) error {
	m.prefs[pref.UserID] = pref
	return nil
}

// byUser 测试辅助：指定用户收到的通知
func (m *mockNotificationRepo) byUser(userID string) []model.Notification {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result
}
