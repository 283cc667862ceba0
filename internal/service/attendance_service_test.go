package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
)

// ── 测试辅助 ──

func setupAttendanceTest() (AttendanceService, *testRepos) {
	repos := newTestRepos()
	cfg := &config.Config{Eighth: config.EighthConfig{AbsenceLimit: 5}}
	notifier := NewNotificationService(repos.repo, nil, zap.NewNop())
	svc := NewAttendanceService(cfg, repos.repo, notifier, zap.NewNop())
	return svc, repos
}

// seedRoster 种子数据：1个排期 + 3个学生报名（stu-3 为待审批补报）
func seedRoster(repos *testRepos) (sa *model.ScheduledActivity, signups map[string]*model.Signup) {
	_, _, _, _, sa = seedSignupData(repos)

	signups = make(map[string]*model.Signup)
	for _, uid := range []string{"stu-1", "stu-2", "stu-3"} {
		if _, ok := repos.users.users[uid]; !ok {
			repos.users.users[uid] = &model.User{UserID: uid, Username: uid, Name: uid, Role: model.RoleStudent}
		}
		sg := &model.Signup{
			UserID:              uid,
			ScheduledActivityID: sa.ScheduledActivityID,
			BlockID:             sa.BlockID,
		}
		if uid == "stu-3" {
			sg.AfterDeadline = true // 未批准的补报
		}
		if err := repos.signups.Create(context.Background(), sg); err != nil {
			panic(err)
		}
		signups[uid] = sg
	}
	return
}

// ════════════════════════════════════════════════════════════
// TakeAttendance 测试
// ════════════════════════════════════════════════════════════

func TestAttendanceService_TakeAttendance(t *testing.T) {
	svc, repos := setupAttendanceTest()
	sa, signups := seedRoster(repos)

	resp, err := svc.TakeAttendance(context.Background(), sa.ScheduledActivityID,
		&dto.TakeAttendanceRequest{PresentUserIDs: []string{"stu-1", "stu-3"}}, "teacher-1")
	if err != nil {
		t.Fatalf("TakeAttendance 应成功: %v", err)
	}

	// stu-1 到场；stu-2 未到场记缺勤；stu-3 到场但补报未批准仍记缺勤
	if resp.Present != 1 {
		t.Errorf("期望 Present=1，实际=%d", resp.Present)
	}
	if resp.Absent != 2 {
		t.Errorf("期望 Absent=2，实际=%d", resp.Absent)
	}
	if resp.PendingPassesAbsent != 1 {
		t.Errorf("期望 PendingPassesAbsent=1，实际=%d", resp.PendingPassesAbsent)
	}
	if signups["stu-1"].WasAbsent {
		t.Error("stu-1 到场不应记缺勤")
	}
	if !signups["stu-2"].WasAbsent || !signups["stu-3"].WasAbsent {
		t.Error("stu-2 与 stu-3 应记缺勤")
	}
	if !repos.scheduled.sas[sa.ScheduledActivityID].AttendanceTaken {
		t.Error("排期应标记考勤完成")
	}
	if len(repos.notifications.byUser("stu-2")) == 0 {
		t.Error("新记缺勤应通知学生")
	}
}

func TestAttendanceService_TakeAttendance_Retake(t *testing.T) {
	svc, repos := setupAttendanceTest()
	sa, signups := seedRoster(repos)

	if _, err := svc.TakeAttendance(context.Background(), sa.ScheduledActivityID,
		&dto.TakeAttendanceRequest{PresentUserIDs: []string{"stu-1"}}, "teacher-1"); err != nil {
		t.Fatalf("首次考勤应成功: %v", err)
	}

	// 重复考勤以最后一次为准：stu-2 改为到场
	resp, err := svc.TakeAttendance(context.Background(), sa.ScheduledActivityID,
		&dto.TakeAttendanceRequest{PresentUserIDs: []string{"stu-1", "stu-2"}}, "teacher-1")
	if err != nil {
		t.Fatalf("重复考勤应成功: %v", err)
	}
	if resp.Present != 2 {
		t.Errorf("期望 Present=2，实际=%d", resp.Present)
	}
	if signups["stu-2"].WasAbsent {
		t.Error("重复考勤后 stu-2 不应再记缺勤")
	}
}

func TestAttendanceService_TakeAttendance_Cancelled(t *testing.T) {
	svc, repos := setupAttendanceTest()
	sa, _ := seedRoster(repos)
	sa.Status = model.ScheduledStatusCancelled

	_, err := svc.TakeAttendance(context.Background(), sa.ScheduledActivityID,
		&dto.TakeAttendanceRequest{PresentUserIDs: []string{"stu-1"}}, "teacher-1")
	if !errors.Is(err, ErrAttendanceCancelled) {
		t.Errorf("期望 ErrAttendanceCancelled，实际: %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// 批量考勤 测试
// ════════════════════════════════════════════════════════════

func TestAttendanceService_BulkMarkZeroSignup(t *testing.T) {
	svc, repos := setupAttendanceTest()
	_, blockA, _, activity, sa := seedSignupData(repos)

	// 同节次再开两个排期：一个零报名，一个有报名
	empty := repos.scheduled.add(&model.ScheduledActivity{BlockID: blockA.BlockID, ActivityID: activity.ActivityID + "-2"})
	if err := repos.signups.Create(context.Background(), &model.Signup{
		UserID: "stu-1", ScheduledActivityID: sa.ScheduledActivityID, BlockID: sa.BlockID,
	}); err != nil {
		t.Fatalf("种子报名失败: %v", err)
	}

	resp, err := svc.BulkMarkZeroSignup(context.Background(), blockA.BlockID, "teacher-1")
	if err != nil {
		t.Fatalf("BulkMarkZeroSignup 应成功: %v", err)
	}
	if resp.Processed != 1 {
		t.Errorf("期望 Processed=1，实际=%d", resp.Processed)
	}
	if resp.Skipped != 1 {
		t.Errorf("有报名的排期应跳过，期望 Skipped=1，实际=%d", resp.Skipped)
	}
	if !repos.scheduled.sas[empty.ScheduledActivityID].AttendanceTaken {
		t.Error("零报名排期应标记考勤完成")
	}
	if repos.scheduled.sas[sa.ScheduledActivityID].AttendanceTaken {
		t.Error("有报名的排期不应被标记")
	}
}

func TestAttendanceService_BulkMarkZeroSignup_BlockNotFound(t *testing.T) {
	svc, _ := setupAttendanceTest()

	_, err := svc.BulkMarkZeroSignup(context.Background(), "nonexistent", "teacher-1")
	if !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("期望 ErrBlockNotFound，实际: %v", err)
	}
}

func TestAttendanceService_BulkMarkCancelled(t *testing.T) {
	svc, repos := setupAttendanceTest()
	sa, signups := seedRoster(repos)
	sa.Status = model.ScheduledStatusCancelled

	resp, err := svc.BulkMarkCancelled(context.Background(), sa.BlockID, "teacher-1")
	if err != nil {
		t.Fatalf("BulkMarkCancelled 应成功: %v", err)
	}
	if resp.Processed != 1 {
		t.Errorf("期望 Processed=1，实际=%d", resp.Processed)
	}
	for uid, sg := range signups {
		if !sg.WasAbsent {
			t.Errorf("取消排期的在册报名应记缺勤: %s", uid)
		}
	}
	if !repos.scheduled.sas[sa.ScheduledActivityID].AttendanceTaken {
		t.Error("排期应标记考勤完成")
	}
}

// ════════════════════════════════════════════════════════════
// 缺勤查询 / 撤销 / 归档 测试
// ════════════════════════════════════════════════════════════

func TestAttendanceService_ClearAbsence(t *testing.T) {
	svc, repos := setupAttendanceTest()
	sa, signups := seedRoster(repos)

	if _, err := svc.TakeAttendance(context.Background(), sa.ScheduledActivityID,
		&dto.TakeAttendanceRequest{PresentUserIDs: []string{"stu-1", "stu-3"}}, "teacher-1"); err != nil {
		t.Fatalf("考勤应成功: %v", err)
	}

	if err := svc.ClearAbsence(context.Background(), signups["stu-2"].SignupID, "admin-1"); err != nil {
		t.Fatalf("撤销缺勤应成功: %v", err)
	}
	if signups["stu-2"].WasAbsent {
		t.Error("撤销后不应再有缺勤标记")
	}

	// 没有缺勤的报名不可撤销
	if err := svc.ClearAbsence(context.Background(), signups["stu-1"].SignupID, "admin-1"); !errors.Is(err, ErrAbsenceNotFound) {
		t.Errorf("期望 ErrAbsenceNotFound，实际: %v", err)
	}
}

func TestAttendanceService_GetAbsences_OverLimit(t *testing.T) {
	svc, repos := setupAttendanceTest()
	student, _, _, _, _ := seedSignupData(repos)

	// 6 次未归档缺勤，超出上限 5
	for i := 0; i < 6; i++ {
		if err := repos.signups.Create(context.Background(), &model.Signup{
			UserID:              student.UserID,
			ScheduledActivityID: "sa-yoga-a",
			BlockID:             "extra-block-" + string(rune('a'+i)),
			WasAbsent:           true,
		}); err != nil {
			t.Fatalf("种子缺勤失败: %v", err)
		}
	}

	resp, err := svc.GetAbsences(context.Background(), student.UserID)
	if err != nil {
		t.Fatalf("GetAbsences 应成功: %v", err)
	}
	if resp.AbsenceCount != 6 {
		t.Errorf("期望 AbsenceCount=6，实际=%d", resp.AbsenceCount)
	}
	if !resp.OverLimit {
		t.Error("超出缺勤上限应标记 OverLimit")
	}
}

func TestAttendanceService_ArchiveAbsences(t *testing.T) {
	svc, repos := setupAttendanceTest()
	sa, signups := seedRoster(repos)

	if _, err := svc.TakeAttendance(context.Background(), sa.ScheduledActivityID,
		&dto.TakeAttendanceRequest{PresentUserIDs: []string{"stu-1", "stu-3"}}, "teacher-1"); err != nil {
		t.Fatalf("考勤应成功: %v", err)
	}

	resp, err := svc.ArchiveAbsences(context.Background())
	if err != nil {
		t.Fatalf("ArchiveAbsences 应成功: %v", err)
	}
	if resp.Archived != 2 {
		t.Errorf("期望归档 2 条缺勤，实际=%d", resp.Archived)
	}
	for _, sg := range signups {
		if sg.WasAbsent {
			t.Error("归档后 WasAbsent 应清零")
		}
	}
	if !signups["stu-2"].ArchivedWasAbsent {
		t.Error("stu-2 的缺勤应转入历史")
	}

	// 归档幂等：再次归档无未归档缺勤
	resp, err = svc.ArchiveAbsences(context.Background())
	if err != nil {
		t.Fatalf("重复归档应成功: %v", err)
	}
	if resp.Archived != 0 {
		t.Errorf("重复归档期望 0 条，实际=%d", resp.Archived)
	}
}
