package model

// ScheduledActivity 生命周期状态
const (
	ScheduledStatusActive    = "active"
	ScheduledStatusCancelled = "cancelled" // 取消不删报名，历史考勤保留
)

// ScheduledActivity 排期活动表 — 对应 scheduled_activities
// 一个活动在一个节次内的一次开设，(block_id, activity_id) 唯一
type ScheduledActivity struct {
	ScheduledActivityID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"          json:"scheduled_activity_id"`
	BlockID             string  `gorm:"type:uuid;not null;uniqueIndex:uniq_block_activity"      json:"block_id"`
	ActivityID          string  `gorm:"type:uuid;not null;uniqueIndex:uniq_block_activity"      json:"activity_id"`
	Status              string  `gorm:"type:varchar(20);not null;default:'active'"              json:"status"`
	AttendanceTaken     bool    `gorm:"not null;default:false"                                  json:"attendance_taken"`
	Capacity            *int    `json:"capacity,omitempty"` // NULL 表示按教室/活动默认推导
	Title               *string `gorm:"type:varchar(100)"                                       json:"title,omitempty"`
	Comment             string  `gorm:"type:varchar(1000);not null;default:''"                  json:"comment"`
	AdminComments       string  `gorm:"type:varchar(1000);not null;default:''"                  json:"admin_comments"`

	// 本次开设的标志覆盖（与活动模板取或）
	Restricted     bool `gorm:"not null;default:false" json:"restricted"`
	Sticky         bool `gorm:"not null;default:false" json:"sticky"`
	BothBlocks     bool `gorm:"not null;default:false" json:"both_blocks"`
	Special        bool `gorm:"not null;default:false" json:"special"`
	Administrative bool `gorm:"not null;default:false" json:"administrative"`

	VersionedModel

	// 关联
	Block    *Block    `gorm:"foreignKey:BlockID;references:BlockID"          json:"block,omitempty"`
	Activity *Activity `gorm:"foreignKey:ActivityID;references:ActivityID"    json:"activity,omitempty"`
	Rooms    []Room    `gorm:"many2many:scheduled_activity_rooms;joinForeignKey:ScheduledActivityID;joinReferences:RoomID"       json:"rooms,omitempty"`
	Sponsors []Sponsor `gorm:"many2many:scheduled_activity_sponsors;joinForeignKey:ScheduledActivityID;joinReferences:SponsorID" json:"sponsors,omitempty"`
}

// TableName 指定表名
func (ScheduledActivity) TableName() string { return "scheduled_activities" }

// IsCancelled 本次开设是否已取消
func (s *ScheduledActivity) IsCancelled() bool { return s.Status == ScheduledStatusCancelled }

// TrueCapacity 推导本次开设的实际容量
// 优先级：显式 capacity → 覆盖教室容量合计 → 活动默认教室容量合计 → 活动默认容量
// 任一参与教室容量为 -1 时结果为 -1（不限）
func (s *ScheduledActivity) TrueCapacity() int {
	if s.Capacity != nil {
		return *s.Capacity
	}
	if len(s.Rooms) > 0 {
		return SumRoomCapacity(s.Rooms)
	}
	if s.Activity != nil {
		if len(s.Activity.Rooms) > 0 {
			return SumRoomCapacity(s.Activity.Rooms)
		}
		return s.Activity.DefaultCapacity
	}
	return 0
}

// EffectiveRooms 本次开设实际使用的教室（覆盖优先，否则继承活动默认）
func (s *ScheduledActivity) EffectiveRooms() []Room {
	if len(s.Rooms) > 0 {
		return s.Rooms
	}
	if s.Activity != nil {
		return s.Activity.Rooms
	}
	return nil
}

// EffectiveSponsors 本次开设实际的指导教师（覆盖优先，否则继承活动默认）
func (s *ScheduledActivity) EffectiveSponsors() []Sponsor {
	if len(s.Sponsors) > 0 {
		return s.Sponsors
	}
	if s.Activity != nil {
		return s.Activity.Sponsors
	}
	return nil
}

// IsSticky 本次开设是否粘性（覆盖标志与活动模板取或）
func (s *ScheduledActivity) IsSticky() bool {
	if s.Sticky {
		return true
	}
	return s.Activity != nil && s.Activity.Sticky
}

// IsBothBlocks 本次开设是否 A/B 联报
func (s *ScheduledActivity) IsBothBlocks() bool {
	if s.BothBlocks {
		return true
	}
	return s.Activity != nil && s.Activity.BothBlocks
}

// IsRestricted 本次开设是否受限
func (s *ScheduledActivity) IsRestricted() bool {
	if s.Restricted {
		return true
	}
	return s.Activity != nil && s.Activity.Restricted
}

// DisplayName 展示名称：覆盖标题优先，否则活动名
func (s *ScheduledActivity) DisplayName() string {
	if s.Title != nil && *s.Title != "" {
		return *s.Title
	}
	if s.Activity != nil {
		return s.Activity.Name
	}
	return ""
}
