package model

import (
	"testing"
	"time"
)

func TestScheduledActivity_TrueCapacity(t *testing.T) {
	activity := &Activity{
		DefaultCapacity: 30,
		Rooms:           []Room{{RoomID: "r1", Capacity: 20}, {RoomID: "r2", Capacity: 15}},
	}

	// 显式容量优先
	twelve := 12
	sa := &ScheduledActivity{Capacity: &twelve, Activity: activity}
	if got := sa.TrueCapacity(); got != 12 {
		t.Errorf("期望显式容量 12，实际=%d", got)
	}

	// 覆盖教室合计次之
	sa = &ScheduledActivity{
		Rooms:    []Room{{RoomID: "r3", Capacity: 8}, {RoomID: "r4", Capacity: 10}},
		Activity: activity,
	}
	if got := sa.TrueCapacity(); got != 18 {
		t.Errorf("期望覆盖教室合计 18，实际=%d", got)
	}

	// 无覆盖时用活动默认教室合计
	sa = &ScheduledActivity{Activity: activity}
	if got := sa.TrueCapacity(); got != 35 {
		t.Errorf("期望活动教室合计 35，实际=%d", got)
	}

	// 活动无教室时退回默认容量
	sa = &ScheduledActivity{Activity: &Activity{DefaultCapacity: 30}}
	if got := sa.TrueCapacity(); got != 30 {
		t.Errorf("期望活动默认容量 30，实际=%d", got)
	}

	// 任一教室 -1 整体不限
	sa = &ScheduledActivity{
		Rooms:    []Room{{RoomID: "r5", Capacity: 20}, {RoomID: "r6", Capacity: CapacityUnlimited}},
		Activity: activity,
	}
	if got := sa.TrueCapacity(); got != CapacityUnlimited {
		t.Errorf("期望不限容量 -1，实际=%d", got)
	}

	// 无活动关联兜底为 0
	sa = &ScheduledActivity{}
	if got := sa.TrueCapacity(); got != 0 {
		t.Errorf("期望兜底 0，实际=%d", got)
	}
}

func TestScheduledActivity_FlagOverrides(t *testing.T) {
	activity := &Activity{Sticky: true}

	sa := &ScheduledActivity{Activity: activity}
	if !sa.IsSticky() {
		t.Error("活动模板粘性应传递到排期")
	}

	sa = &ScheduledActivity{Sticky: true, Activity: &Activity{}}
	if !sa.IsSticky() {
		t.Error("排期覆盖粘性应生效")
	}

	sa = &ScheduledActivity{Activity: &Activity{}}
	if sa.IsSticky() || sa.IsBothBlocks() || sa.IsRestricted() {
		t.Error("无标志时全部应为 false")
	}
}

func TestScheduledActivity_DisplayName(t *testing.T) {
	title := "周三专场"
	sa := &ScheduledActivity{Title: &title, Activity: &Activity{Name: "瑜伽社"}}
	if got := sa.DisplayName(); got != "周三专场" {
		t.Errorf("覆盖标题应优先，实际=%s", got)
	}

	sa = &ScheduledActivity{Activity: &Activity{Name: "瑜伽社"}}
	if got := sa.DisplayName(); got != "瑜伽社" {
		t.Errorf("期望活动名，实际=%s", got)
	}
}

func TestUser_Grade(t *testing.T) {
	grad := 2029
	u := &User{GraduationYear: &grad}

	// 学年以 7 月为界：2026-06 属于 2025-2026 学年（结束年 2026）
	spring := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	if got := u.Grade(spring); got != GradeFreshman {
		t.Errorf("2026-06 期望 9 年级，实际=%d", got)
	}

	// 2026-09 进入 2026-2027 学年（结束年 2027）
	fall := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if got := u.Grade(fall); got != GradeSophomore {
		t.Errorf("2026-09 期望 10 年级，实际=%d", got)
	}

	// 毕业之后不在 9-12 区间
	after := time.Date(2030, 9, 1, 0, 0, 0, 0, time.UTC)
	if got := u.Grade(after); got != 0 {
		t.Errorf("毕业后期望 0，实际=%d", got)
	}

	// 教职工无毕业年份
	staff := &User{}
	if got := staff.Grade(fall); got != 0 {
		t.Errorf("无毕业年份期望 0，实际=%d", got)
	}
}

func TestBlock_SameDayAndOrder(t *testing.T) {
	a := &Block{Date: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), BlockLetter: "A"}
	b := &Block{Date: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), BlockLetter: "B"}
	c := &Block{Date: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), BlockLetter: "A"}

	if !a.SameDay(b) {
		t.Error("同日不同字母应为同一天")
	}
	if a.SameDay(c) {
		t.Error("不同日期不应为同一天")
	}
	if !a.Before(b) || !b.Before(c) {
		t.Error("节次应按 (日期, 字母) 升序")
	}
}
