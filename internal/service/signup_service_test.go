package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/model"
)

// ── 测试辅助 ──

func setupSignupTest() (SignupService, *testRepos) {
	repos := newTestRepos()
	notifier := NewNotificationService(repos.repo, nil, zap.NewNop())
	svc := NewSignupService(&config.Config{}, repos.repo, notifier, zap.NewNop())
	return svc, repos
}

// seedSignupData 种子数据：1个学生 + 同日 A/B 两节次 + 1个活动及其 A 节排期
func seedSignupData(repos *testRepos) (student *model.User, blockA, blockB *model.Block, activity *model.Activity, sa *model.ScheduledActivity) {
	// 毕业年份按当前学年推算，保证学生始终是 10 年级
	now := time.Now()
	endYear := now.Year()
	if now.Month() >= time.July {
		endYear++
	}
	grad := endYear + model.GradeSenior - model.GradeSophomore
	student = &model.User{
		UserID:         "stu-1",
		Username:       "zhangsan",
		Name:           "张三",
		Role:           model.RoleStudent,
		GraduationYear: &grad,
	}
	repos.users.users[student.UserID] = student

	date := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	blockA = &model.Block{BlockID: "block-a", Date: date, BlockLetter: "A"}
	blockB = &model.Block{BlockID: "block-b", Date: date, BlockLetter: "B"}
	repos.blocks.blocks[blockA.BlockID] = blockA
	repos.blocks.blocks[blockB.BlockID] = blockB

	activity = &model.Activity{
		ActivityID:      "act-yoga",
		Name:            "瑜伽社",
		DefaultCapacity: 10,
		Status:          model.ActivityStatusActive,
	}
	repos.activities.activities[activity.ActivityID] = activity

	sa = repos.scheduled.add(&model.ScheduledActivity{
		ScheduledActivityID: "sa-yoga-a",
		BlockID:             blockA.BlockID,
		ActivityID:          activity.ActivityID,
	})
	return
}

// hasViolation 报名冲突错误中是否包含指定违规代码
func hasViolation(t *testing.T, err error, code string) bool {
	t.Helper()
	var conflict *SignupConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("期望 SignupConflictError，实际: %v", err)
	}
	for _, v := range conflict.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// ════════════════════════════════════════════════════════════
// AddUser 测试
// ════════════════════════════════════════════════════════════

func TestSignupService_AddUser_Success(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, _, sa := seedSignupData(repos)

	resp, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if err != nil {
		t.Fatalf("AddUser 应成功: %v", err)
	}
	if resp.Signup == nil {
		t.Fatal("Signup 不应为 nil")
	}
	if resp.Signup.AfterDeadline {
		t.Error("未锁定节次的报名不应标记为补报")
	}
	if len(repos.signups.signups) != 1 {
		t.Errorf("期望 1 条报名，实际=%d", len(repos.signups.signups))
	}
}

func TestSignupService_AddUser_Idempotent(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, _, sa := seedSignupData(repos)

	first, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if err != nil {
		t.Fatalf("首次报名应成功: %v", err)
	}
	second, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if err != nil {
		t.Fatalf("重复报名应幂等返回: %v", err)
	}
	if first.Signup.ID != second.Signup.ID {
		t.Errorf("重复报名应返回同一条记录，实际 %s != %s", first.Signup.ID, second.Signup.ID)
	}
	if len(repos.signups.signups) != 1 {
		t.Errorf("期望仍为 1 条报名，实际=%d", len(repos.signups.signups))
	}
}

func TestSignupService_AddUser_SwitchActivity(t *testing.T) {
	svc, repos := setupSignupTest()
	student, blockA, _, _, sa := seedSignupData(repos)

	// 同一节次的第二个排期
	other := &model.Activity{ActivityID: "act-chess", Name: "棋社", DefaultCapacity: 10, Status: model.ActivityStatusActive}
	repos.activities.activities[other.ActivityID] = other
	sa2 := repos.scheduled.add(&model.ScheduledActivity{BlockID: blockA.BlockID, ActivityID: other.ActivityID})

	if _, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID}); err != nil {
		t.Fatalf("首次报名应成功: %v", err)
	}
	if _, err := svc.AddUser(context.Background(), student.UserID, sa2.ScheduledActivityID, AddUserOptions{ActorID: student.UserID}); err != nil {
		t.Fatalf("换课应成功: %v", err)
	}

	// 原报名让位，同一节次只剩一条且指向新排期
	if len(repos.signups.signups) != 1 {
		t.Fatalf("换课后期望 1 条报名，实际=%d", len(repos.signups.signups))
	}
	for _, sg := range repos.signups.signups {
		if sg.ScheduledActivityID != sa2.ScheduledActivityID {
			t.Errorf("期望报名指向 %s，实际=%s", sa2.ScheduledActivityID, sg.ScheduledActivityID)
		}
	}
}

func TestSignupService_AddUser_Full(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, _, sa := seedSignupData(repos)

	one := 1
	sa.Capacity = &one
	occupant := &model.User{UserID: "stu-2", Username: "lisi", Name: "李四", Role: model.RoleStudent}
	repos.users.users[occupant.UserID] = occupant
	if _, err := svc.AddUser(context.Background(), occupant.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: occupant.UserID}); err != nil {
		t.Fatalf("占位报名应成功: %v", err)
	}

	_, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if !hasViolation(t, err, ViolationFull) {
		t.Errorf("期望 %s 违规，实际: %v", ViolationFull, err)
	}
}

func TestSignupService_AddUser_UnlimitedCapacity(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, activity, sa := seedSignupData(repos)
	activity.DefaultCapacity = model.CapacityUnlimited

	if _, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID}); err != nil {
		t.Errorf("容量 -1 不限，报名应成功: %v", err)
	}
}

func TestSignupService_AddUser_ForceBypassesFull(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, _, sa := seedSignupData(repos)

	zero := 0
	sa.Capacity = &zero
	resp, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{Force: true, ActorID: "admin-1"})
	if err != nil {
		t.Fatalf("force 应越过容量限制: %v", err)
	}
	if resp.Signup == nil {
		t.Fatal("Signup 不应为 nil")
	}
}

func TestSignupService_AddUser_Cancelled(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, _, sa := seedSignupData(repos)
	sa.Status = model.ScheduledStatusCancelled

	_, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if !hasViolation(t, err, ViolationCancelled) {
		t.Errorf("期望 %s 违规，实际: %v", ViolationCancelled, err)
	}
}

func TestSignupService_AddUser_DeletedActivity(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, activity, sa := seedSignupData(repos)
	activity.Status = model.ActivityStatusDeleted

	_, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if !hasViolation(t, err, ViolationDeleted) {
		t.Errorf("期望 %s 违规，实际: %v", ViolationDeleted, err)
	}

	// force 也不可越过已删除活动
	_, err = svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{Force: true, ActorID: "admin-1"})
	if !hasViolation(t, err, ViolationDeleted) {
		t.Errorf("force 不应越过活动删除，实际: %v", err)
	}
}

func TestSignupService_AddUser_Blacklisted(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, activity, sa := seedSignupData(repos)
	activity.UsersBlacklisted = []model.User{{UserID: student.UserID}}

	_, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if !hasViolation(t, err, ViolationBlacklist) {
		t.Errorf("期望 %s 违规，实际: %v", ViolationBlacklist, err)
	}
}

func TestSignupService_AddUser_RestrictedNoPath(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, activity, sa := seedSignupData(repos)
	activity.Restricted = true
	activity.SeniorsAllowed = true // 学生是 10 年级

	_, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if !hasViolation(t, err, ViolationRestricted) {
		t.Errorf("期望 %s 违规，实际: %v", ViolationRestricted, err)
	}
}

func TestSignupService_AddUser_RestrictedGradePath(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, activity, sa := seedSignupData(repos)
	activity.Restricted = true
	activity.SophomoresAllowed = true

	if _, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID}); err != nil {
		t.Errorf("年级在准入范围内应放行: %v", err)
	}
}

func TestSignupService_AddUser_RestrictedGroupPath(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, activity, sa := seedSignupData(repos)

	// 年级准入不命中，但用户组命中：任一路径通过即放行
	activity.Restricted = true
	activity.SeniorsAllowed = true
	activity.GroupsAllowed = []model.Group{{GroupID: "group-drama"}}
	student.Groups = []model.Group{{GroupID: "group-drama"}}

	if _, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID}); err != nil {
		t.Errorf("用户组命中应放行: %v", err)
	}
}

func TestSignupService_AddUser_RestrictedWhitelistPath(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, activity, sa := seedSignupData(repos)
	activity.Restricted = true
	activity.UsersAllowed = []model.User{{UserID: student.UserID}}

	if _, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID}); err != nil {
		t.Errorf("白名单命中应放行: %v", err)
	}
}

func TestSignupService_AddUser_Administrative(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, activity, sa := seedSignupData(repos)
	activity.Administrative = true

	_, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if !hasViolation(t, err, ViolationAdministrative) {
		t.Errorf("期望 %s 违规，实际: %v", ViolationAdministrative, err)
	}

	// 管理员 force 代报可以
	if _, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{Force: true, ActorID: "admin-1"}); err != nil {
		t.Errorf("force 代报应成功: %v", err)
	}
}

func TestSignupService_AddUser_StickyBlocksSwitch(t *testing.T) {
	svc, repos := setupSignupTest()
	student, blockA, _, _, _ := seedSignupData(repos)

	sticky := &model.Activity{ActivityID: "act-band", Name: "乐队", DefaultCapacity: 10, Sticky: true, Status: model.ActivityStatusActive}
	repos.activities.activities[sticky.ActivityID] = sticky
	stickySA := repos.scheduled.add(&model.ScheduledActivity{BlockID: blockA.BlockID, ActivityID: sticky.ActivityID})

	other := &model.Activity{ActivityID: "act-chess", Name: "棋社", DefaultCapacity: 10, Status: model.ActivityStatusActive}
	repos.activities.activities[other.ActivityID] = other
	otherSA := repos.scheduled.add(&model.ScheduledActivity{BlockID: blockA.BlockID, ActivityID: other.ActivityID})

	if _, err := svc.AddUser(context.Background(), student.UserID, stickySA.ScheduledActivityID, AddUserOptions{ActorID: student.UserID}); err != nil {
		t.Fatalf("报名粘性活动应成功: %v", err)
	}

	// 粘性锁定，不许换课
	_, err := svc.AddUser(context.Background(), student.UserID, otherSA.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if !hasViolation(t, err, ViolationSticky) {
		t.Errorf("期望 %s 违规，实际: %v", ViolationSticky, err)
	}

	// 原排期取消后放行
	stickySA.Status = model.ScheduledStatusCancelled
	if _, err := svc.AddUser(context.Background(), student.UserID, otherSA.ScheduledActivityID, AddUserOptions{ActorID: student.UserID}); err != nil {
		t.Errorf("原排期已取消应允许换课: %v", err)
	}
}

func TestSignupService_AddUser_OneADay(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, blockB, activity, sa := seedSignupData(repos)
	activity.OneADay = true

	// 同日 B 节已报同一活动
	saB := repos.scheduled.add(&model.ScheduledActivity{BlockID: blockB.BlockID, ActivityID: activity.ActivityID})
	if _, err := svc.AddUser(context.Background(), student.UserID, saB.ScheduledActivityID, AddUserOptions{ActorID: student.UserID}); err != nil {
		t.Fatalf("B 节报名应成功: %v", err)
	}

	_, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if !hasViolation(t, err, ViolationOneADay) {
		t.Errorf("期望 %s 违规，实际: %v", ViolationOneADay, err)
	}
}

func TestSignupService_AddUser_BothBlocksPaired(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, blockB, activity, sa := seedSignupData(repos)
	activity.BothBlocks = true
	saB := repos.scheduled.add(&model.ScheduledActivity{BlockID: blockB.BlockID, ActivityID: activity.ActivityID})

	resp, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if err != nil {
		t.Fatalf("联报应成功: %v", err)
	}
	if resp.Paired == nil {
		t.Fatal("联报应返回成对报名")
	}
	if len(repos.signups.signups) != 2 {
		t.Errorf("联报期望 2 条报名，实际=%d", len(repos.signups.signups))
	}
	if _, err := repos.signups.GetByUserAndBlock(context.Background(), student.UserID, saB.BlockID); err != nil {
		t.Error("B 节次应存在成对报名")
	}
}

func TestSignupService_AddUser_AfterDeadline(t *testing.T) {
	svc, repos := setupSignupTest()
	student, blockA, _, _, sa := seedSignupData(repos)
	blockA.Locked = true

	resp, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if err != nil {
		t.Fatalf("锁定节次报名应成功并标记补报: %v", err)
	}
	if !resp.Signup.AfterDeadline {
		t.Error("锁定节次的报名应标记为补报")
	}
}

func TestSignupService_AddUser_NoAfterDeadline(t *testing.T) {
	svc, repos := setupSignupTest()
	student, blockA, _, _, sa := seedSignupData(repos)
	blockA.Locked = true

	resp, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{NoAfterDeadline: true, ActorID: "admin-1"})
	if err != nil {
		t.Fatalf("AddUser 应成功: %v", err)
	}
	if resp.Signup.AfterDeadline {
		t.Error("no_after_deadline 下不应标记补报")
	}
}

func TestSignupService_AddUser_AggregatesViolations(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, activity, sa := seedSignupData(repos)
	sa.Status = model.ScheduledStatusCancelled
	activity.UsersBlacklisted = []model.User{{UserID: student.UserID}}
	activity.Restricted = true
	activity.SeniorsAllowed = true

	_, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	var conflict *SignupConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("期望 SignupConflictError，实际: %v", err)
	}
	if len(conflict.Violations) != 3 {
		t.Errorf("期望聚合 3 条违规，实际=%d: %v", len(conflict.Violations), conflict.Violations)
	}
}

func TestSignupService_AddUser_UserNotFound(t *testing.T) {
	svc, repos := setupSignupTest()
	_, _, _, _, sa := seedSignupData(repos)

	_, err := svc.AddUser(context.Background(), "nonexistent", sa.ScheduledActivityID, AddUserOptions{})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// RemoveSignup 测试
// ════════════════════════════════════════════════════════════

func TestSignupService_RemoveSignup_Self(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, _, sa := seedSignupData(repos)

	resp, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if err != nil {
		t.Fatalf("报名应成功: %v", err)
	}
	if err := svc.RemoveSignup(context.Background(), resp.Signup.ID, student.UserID, false); err != nil {
		t.Fatalf("自退应成功: %v", err)
	}
	if len(repos.signups.signups) != 0 {
		t.Errorf("退课后期望 0 条报名，实际=%d", len(repos.signups.signups))
	}
}

func TestSignupService_RemoveSignup_NotSelf(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, _, sa := seedSignupData(repos)

	resp, _ := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	err := svc.RemoveSignup(context.Background(), resp.Signup.ID, "stu-other", false)
	if !errors.Is(err, ErrSignupNotSelf) {
		t.Errorf("期望 ErrSignupNotSelf，实际: %v", err)
	}
}

func TestSignupService_RemoveSignup_Sticky(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, activity, sa := seedSignupData(repos)
	activity.Sticky = true

	resp, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if err != nil {
		t.Fatalf("报名应成功: %v", err)
	}

	// 学生不可自退粘性活动
	if err := svc.RemoveSignup(context.Background(), resp.Signup.ID, student.UserID, false); !errors.Is(err, ErrSignupSticky) {
		t.Errorf("期望 ErrSignupSticky，实际: %v", err)
	}

	// 管理员不受限
	if err := svc.RemoveSignup(context.Background(), resp.Signup.ID, "admin-1", true); err != nil {
		t.Errorf("管理员移除应成功: %v", err)
	}
}

func TestSignupService_RemoveSignup_StickyCancelledEscape(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, activity, sa := seedSignupData(repos)
	activity.Sticky = true

	resp, _ := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	sa.Status = model.ScheduledStatusCancelled

	if err := svc.RemoveSignup(context.Background(), resp.Signup.ID, student.UserID, false); err != nil {
		t.Errorf("排期已取消应允许自退: %v", err)
	}
}

func TestSignupService_RemoveSignup_BothBlocksPair(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, blockB, activity, sa := seedSignupData(repos)
	activity.BothBlocks = true
	repos.scheduled.add(&model.ScheduledActivity{BlockID: blockB.BlockID, ActivityID: activity.ActivityID})

	resp, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if err != nil {
		t.Fatalf("联报应成功: %v", err)
	}
	if err := svc.RemoveSignup(context.Background(), resp.Signup.ID, student.UserID, false); err != nil {
		t.Fatalf("退课应成功: %v", err)
	}
	if len(repos.signups.signups) != 0 {
		t.Errorf("联报整体退后期望 0 条报名，实际=%d", len(repos.signups.signups))
	}
}

// ════════════════════════════════════════════════════════════
// Roster / 补报审批 测试
// ════════════════════════════════════════════════════════════

func TestSignupService_Roster_RestrictedHiddenForStudent(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, activity, sa := seedSignupData(repos)
	activity.Restricted = true
	activity.SophomoresAllowed = true

	if _, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID}); err != nil {
		t.Fatalf("报名应成功: %v", err)
	}

	roster, err := svc.Roster(context.Background(), sa.ScheduledActivityID, model.RoleStudent)
	if err != nil {
		t.Fatalf("Roster 应成功: %v", err)
	}
	if roster.HiddenCount != 1 {
		t.Errorf("受限活动对学生应折叠名单，期望 HiddenCount=1，实际=%d", roster.HiddenCount)
	}
	if len(roster.Viewable) != 0 {
		t.Errorf("受限活动对学生不应展开名单，实际=%d", len(roster.Viewable))
	}

	// 教职工可见
	roster, err = svc.Roster(context.Background(), sa.ScheduledActivityID, model.RoleTeacher)
	if err != nil {
		t.Fatalf("Roster 应成功: %v", err)
	}
	if len(roster.Viewable) != 1 {
		t.Errorf("教职工应看到完整名单，实际=%d", len(roster.Viewable))
	}
}

func TestSignupService_DecidePass_Accept(t *testing.T) {
	svc, repos := setupSignupTest()
	student, blockA, _, _, sa := seedSignupData(repos)
	blockA.Locked = true

	resp, err := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if err != nil {
		t.Fatalf("补报应成功: %v", err)
	}
	// 考勤先把未批准补报记了缺勤，批准应一并清除
	repos.signups.signups[resp.Signup.ID].WasAbsent = true

	if err := svc.DecidePass(context.Background(), resp.Signup.ID, true, "admin-1"); err != nil {
		t.Fatalf("批准补报应成功: %v", err)
	}

	sg := repos.signups.signups[resp.Signup.ID]
	if !sg.PassAccepted {
		t.Error("批准后 PassAccepted 应为 true")
	}
	if sg.WasAbsent {
		t.Error("批准后应清除 WasAbsent")
	}
	if len(repos.notifications.byUser(student.UserID)) == 0 {
		t.Error("批准补报应通知学生")
	}
}

func TestSignupService_DecidePass_Reject(t *testing.T) {
	svc, repos := setupSignupTest()
	student, blockA, _, _, sa := seedSignupData(repos)
	blockA.Locked = true

	resp, _ := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	if err := svc.DecidePass(context.Background(), resp.Signup.ID, false, "admin-1"); err != nil {
		t.Fatalf("驳回补报应成功: %v", err)
	}

	// 驳回保留报名并记缺勤，缺勤计入统计
	sg, ok := repos.signups.signups[resp.Signup.ID]
	if !ok {
		t.Fatal("驳回后报名应保留")
	}
	if !sg.WasAbsent {
		t.Error("驳回后 WasAbsent 应为 true")
	}
	if sg.PassAccepted {
		t.Error("驳回不应标记 PassAccepted")
	}
	count, _ := repos.signups.CountAbsences(context.Background(), student.UserID)
	if count != 1 {
		t.Errorf("驳回缺勤应计入统计，期望 1，实际=%d", count)
	}
	if len(repos.notifications.byUser(student.UserID)) == 0 {
		t.Error("驳回补报应通知学生")
	}

	// 驳回后仍可批准翻案，批准连带清缺勤
	if err := svc.DecidePass(context.Background(), resp.Signup.ID, true, "admin-1"); err != nil {
		t.Fatalf("驳回后批准应成功: %v", err)
	}
	if sg.WasAbsent || !sg.PassAccepted {
		t.Error("翻案批准后应清除缺勤并标记 PassAccepted")
	}
}

func TestSignupService_DecidePass_NotPending(t *testing.T) {
	svc, repos := setupSignupTest()
	student, _, _, _, sa := seedSignupData(repos)

	resp, _ := svc.AddUser(context.Background(), student.UserID, sa.ScheduledActivityID, AddUserOptions{ActorID: student.UserID})
	err := svc.DecidePass(context.Background(), resp.Signup.ID, true, "admin-1")
	if !errors.Is(err, ErrSignupNotPending) {
		t.Errorf("期望 ErrSignupNotPending，实际: %v", err)
	}
}
