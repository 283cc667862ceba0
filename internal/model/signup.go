package model

// Signup 报名记录表 — 对应 signups
// block_id 为冗余列：唯一约束 (user_id, block_id) 在数据库层兜底
// "同一节次至多一条报名"不变量
type Signup struct {
	SignupID            string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"signup_id"`
	UserID              string `gorm:"type:uuid;not null;uniqueIndex:uniq_user_block" json:"user_id"`
	ScheduledActivityID string `gorm:"type:uuid;not null;index"                       json:"scheduled_activity_id"`
	BlockID             string `gorm:"type:uuid;not null;uniqueIndex:uniq_user_block" json:"block_id"`

	AfterDeadline     bool `gorm:"not null;default:false" json:"after_deadline"`      // 节次锁定后的补报
	PassAccepted      bool `gorm:"not null;default:false" json:"pass_accepted"`       // 补报是否已批准
	WasAbsent         bool `gorm:"not null;default:false" json:"was_absent"`          // 本次缺勤
	ArchivedWasAbsent bool `gorm:"not null;default:false" json:"archived_was_absent"` // 年终归档的历史缺勤

	BaseModel

	// 关联
	User              *User              `gorm:"foreignKey:UserID;references:UserID"                                   json:"user,omitempty"`
	ScheduledActivity *ScheduledActivity `gorm:"foreignKey:ScheduledActivityID;references:ScheduledActivityID" json:"scheduled_activity,omitempty"`
	Block             *Block             `gorm:"foreignKey:BlockID;references:BlockID"                                 json:"block,omitempty"`
}

// TableName 指定表名
func (Signup) TableName() string { return "signups" }

// IsPendingPass 未获批准的补报；考勤时一律计缺勤，批准前随时可审批
func (s *Signup) IsPendingPass() bool { return s.AfterDeadline && !s.PassAccepted }
