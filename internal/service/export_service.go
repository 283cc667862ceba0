package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSignups    = errors.New("该排期暂无报名")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 点名表导出为 Excel (.xlsx)，供线下考勤与存档
//   - 个人课表导出为 iCalendar (.ics)，供日历客户端订阅
//   - 均以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response
type ExportService interface {
	// ExportRoster 导出单个排期的点名表
	ExportRoster(ctx context.Context, scheduledActivityID string) (*bytes.Buffer, string, error)
	// ExportUserCalendar 导出用户全部未归档报名为 .ics 日历
	ExportUserCalendar(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRoster — 点名表导出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题行：活动名 + 节次（日期 字母）
//   - 表头：序号 | 姓名 | 用户名 | 年级 | 补报 | 缺勤
//   - 按姓名排序

func (s *exportService) ExportRoster(ctx context.Context, scheduledActivityID string) (*bytes.Buffer, string, error) {
	sa, err := s.repo.ScheduledActivity.GetByID(ctx, scheduledActivityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrScheduledNotFound
		}
		s.logger.Error("查询排期失败", zap.Error(err))
		return nil, "", err
	}

	signups, err := s.repo.Signup.ListByScheduledActivity(ctx, scheduledActivityID)
	if err != nil {
		s.logger.Error("查询名单失败", zap.Error(err))
		return nil, "", err
	}
	if len(signups) == 0 {
		return nil, "", ErrExportNoSignups
	}

	sort.Slice(signups, func(i, j int) bool {
		var ni, nj string
		if signups[i].User != nil {
			ni = signups[i].User.Name
		}
		if signups[j].User != nil {
			nj = signups[j].User.Name
		}
		return ni < nj
	})

	blockLabel := ""
	if sa.Block != nil {
		blockLabel = fmt.Sprintf("%s %s节", sa.Block.Date.Format(dateLayout), sa.Block.BlockLetter)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "点名表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "C", 16)
	f.SetColWidth(sheetName, "D", "F", 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — %s", sa.DisplayName(), blockLabel))
	f.MergeCell(sheetName, "A1", "F1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"序号", "姓名", "用户名", "年级", "补报", "缺勤"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, cell(col, 2), h)
	}

	row := 3
	now := time.Now()
	for i := range signups {
		sg := &signups[i]
		f.SetCellValue(sheetName, cell("A", row), i+1)
		if sg.User != nil {
			f.SetCellValue(sheetName, cell("B", row), sg.User.Name)
			f.SetCellValue(sheetName, cell("C", row), sg.User.Username)
			if grade := sg.User.Grade(now); grade > 0 {
				f.SetCellValue(sheetName, cell("D", row), grade)
			}
		}
		f.SetCellValue(sheetName, cell("E", row), mark(sg.AfterDeadline))
		f.SetCellValue(sheetName, cell("F", row), mark(sg.WasAbsent))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("点名表_%s_%s.xlsx", sa.DisplayName(), blockLabel)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportUserCalendar — 个人报名导出为 .ics
// ═══════════════════════════════════════════════════════════
//
// 第八节活动课固定 15:45-16:30（A 节）与 16:35-17:20（B 节），
// 其余字母按 A 节时段处理

func (s *exportService) ExportUserCalendar(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, "", err
	}

	signups, _, err := s.repo.Signup.ListByUser(ctx, userID, 0, 500)
	if err != nil {
		s.logger.Error("查询用户报名失败", zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//campus-portal//eighth-period//CN")

	now := time.Now()
	for i := range signups {
		sg := &signups[i]
		if sg.Block == nil || sg.ScheduledActivity == nil {
			continue
		}
		start, end := blockTimes(sg.Block)

		evt := cal.AddEvent(fmt.Sprintf("signup-%s@campus-portal", sg.SignupID))
		evt.SetCreatedTime(now)
		evt.SetDtStampTime(now)
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		evt.SetSummary(sg.ScheduledActivity.DisplayName())
		if rooms := sg.ScheduledActivity.EffectiveRooms(); len(rooms) > 0 {
			names := make([]string, len(rooms))
			for j := range rooms {
				names[j] = rooms[j].Name
			}
			evt.SetLocation(joinComma(names))
		}
		if sg.ScheduledActivity.IsCancelled() {
			evt.SetStatus(ics.ObjectStatusCancelled)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("第八节课表_%s.ics", user.Username)
	return buf, filename, nil
}

// blockTimes 节次的起止时刻
func blockTimes(b *model.Block) (time.Time, time.Time) {
	y, m, d := b.Date.Date()
	loc := b.Date.Location()
	if b.BlockLetter == "B" {
		return time.Date(y, m, d, 16, 35, 0, 0, loc), time.Date(y, m, d, 17, 20, 0, 0, loc)
	}
	return time.Date(y, m, d, 15, 45, 0, 0, loc), time.Date(y, m, d, 16, 30, 0, 0, loc)
}

// ── 辅助函数 ──

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func mark(b bool) string {
	if b {
		return "是"
	}
	return ""
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "、"
		}
		out += p
	}
	return out
}
