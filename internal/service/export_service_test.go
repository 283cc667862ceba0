package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"campus-portal/backend/internal/model"
)

func setupExportTest() (ExportService, *testRepos) {
	repos := newTestRepos()
	svc := NewExportService(repos.repo, zap.NewNop())
	return svc, repos
}

func TestExportService_ExportRoster(t *testing.T) {
	svc, repos := setupExportTest()
	student, _, _, _, sa := seedSignupData(repos)

	if err := repos.signups.Create(context.Background(), &model.Signup{
		UserID: student.UserID, ScheduledActivityID: sa.ScheduledActivityID, BlockID: sa.BlockID,
	}); err != nil {
		t.Fatalf("种子报名失败: %v", err)
	}

	buf, filename, err := svc.ExportRoster(context.Background(), sa.ScheduledActivityID)
	if err != nil {
		t.Fatalf("ExportRoster 应成功: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Excel 内容不应为空")
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名应为 .xlsx，实际=%s", filename)
	}
	if !strings.Contains(filename, "瑜伽社") {
		t.Errorf("文件名应含活动名，实际=%s", filename)
	}
}

func TestExportService_ExportRoster_Empty(t *testing.T) {
	svc, repos := setupExportTest()
	_, _, _, _, sa := seedSignupData(repos)

	_, _, err := svc.ExportRoster(context.Background(), sa.ScheduledActivityID)
	if !errors.Is(err, ErrExportNoSignups) {
		t.Errorf("期望 ErrExportNoSignups，实际: %v", err)
	}
}

func TestExportService_ExportUserCalendar(t *testing.T) {
	svc, repos := setupExportTest()
	student, _, blockB, activity, sa := seedSignupData(repos)
	saB := repos.scheduled.add(&model.ScheduledActivity{BlockID: blockB.BlockID, ActivityID: activity.ActivityID})

	for _, s := range []*model.ScheduledActivity{sa, saB} {
		if err := repos.signups.Create(context.Background(), &model.Signup{
			UserID: student.UserID, ScheduledActivityID: s.ScheduledActivityID, BlockID: s.BlockID,
		}); err != nil {
			t.Fatalf("种子报名失败: %v", err)
		}
	}

	buf, filename, err := svc.ExportUserCalendar(context.Background(), student.UserID)
	if err != nil {
		t.Fatalf("ExportUserCalendar 应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".ics") {
		t.Errorf("文件名应为 .ics，实际=%s", filename)
	}

	content := buf.String()
	if !strings.Contains(content, "BEGIN:VCALENDAR") {
		t.Error("输出应为 iCalendar 格式")
	}
	if got := strings.Count(content, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("期望 2 个日历事件，实际=%d", got)
	}
	if !strings.Contains(content, "瑜伽社") {
		t.Error("事件标题应为活动名")
	}
	// A 节 15:45，B 节 16:35
	if !strings.Contains(content, "T154500") {
		t.Error("A 节应从 15:45 开始")
	}
	if !strings.Contains(content, "T163500") {
		t.Error("B 节应从 16:35 开始")
	}
}

func TestExportService_ExportUserCalendar_UserNotFound(t *testing.T) {
	svc, _ := setupExportTest()

	_, _, err := svc.ExportUserCalendar(context.Background(), "nonexistent")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
