package model

// Activity 生命周期状态
const (
	ActivityStatusActive  = "active"
	ActivityStatusDeleted = "deleted" // 软删除：历史排期与报名仍然有效
)

// Activity 活动模板表 — 对应 activities
// 描述一类活动的准入规则与默认容量/教室/指导教师，被多个节次复用
type Activity struct {
	ActivityID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"activity_id"`
	Name            string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description     string `gorm:"type:text;not null;default:''"                  json:"description"`
	DefaultCapacity int    `gorm:"not null;default:0"                             json:"default_capacity"` // -1 表示不限
	Status          string `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`

	// 行为标志
	Restricted     bool `gorm:"not null;default:false" json:"restricted"`      // 仅限指定年级/用户组
	Presign        bool `gorm:"not null;default:false" json:"presign"`         // 提前开放报名
	OneADay        bool `gorm:"not null;default:false" json:"one_a_day"`       // 同一天只能报名一次
	BothBlocks     bool `gorm:"not null;default:false" json:"both_blocks"`     // 同日 A/B 两节联报
	Sticky         bool `gorm:"not null;default:false" json:"sticky"`          // 报名后不可自行改报
	Special        bool `gorm:"not null;default:false" json:"special"`         // 列表中高亮展示
	Administrative bool `gorm:"not null;default:false" json:"administrative"`  // 仅管理员可代报

	// 年级准入标志
	FreshmenAllowed   bool `gorm:"not null;default:false" json:"freshmen_allowed"`
	SophomoresAllowed bool `gorm:"not null;default:false" json:"sophomores_allowed"`
	JuniorsAllowed    bool `gorm:"not null;default:false" json:"juniors_allowed"`
	SeniorsAllowed    bool `gorm:"not null;default:false" json:"seniors_allowed"`

	VersionedModel

	// 关联
	Rooms            []Room    `gorm:"many2many:activity_rooms;joinForeignKey:ActivityID;joinReferences:RoomID"                json:"rooms,omitempty"`
	Sponsors         []Sponsor `gorm:"many2many:activity_sponsors;joinForeignKey:ActivityID;joinReferences:SponsorID"         json:"sponsors,omitempty"`
	GroupsAllowed    []Group   `gorm:"many2many:activity_groups_allowed;joinForeignKey:ActivityID;joinReferences:GroupID"     json:"groups_allowed,omitempty"`
	UsersAllowed     []User    `gorm:"many2many:activity_users_allowed;joinForeignKey:ActivityID;joinReferences:UserID"       json:"users_allowed,omitempty"`
	UsersBlacklisted []User    `gorm:"many2many:activity_users_blacklisted;joinForeignKey:ActivityID;joinReferences:UserID"   json:"users_blacklisted,omitempty"`
}

// TableName 指定表名
func (Activity) TableName() string { return "activities" }

// IsDeleted 活动是否已软删除
func (a *Activity) IsDeleted() bool { return a.Status == ActivityStatusDeleted }

// GradeAllowed 指定年级是否在准入范围内
func (a *Activity) GradeAllowed(grade int) bool {
	switch grade {
	case GradeFreshman:
		return a.FreshmenAllowed
	case GradeSophomore:
		return a.SophomoresAllowed
	case GradeJunior:
		return a.JuniorsAllowed
	case GradeSenior:
		return a.SeniorsAllowed
	default:
		return false
	}
}

// HasGradeRestriction 是否配置了任一年级准入标志
func (a *Activity) HasGradeRestriction() bool {
	return a.FreshmenAllowed || a.SophomoresAllowed || a.JuniorsAllowed || a.SeniorsAllowed
}
