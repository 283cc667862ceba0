package model

import "time"

// 用户角色
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User 用户表 — 对应 users
type User struct {
	UserID         string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username       string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"username"`
	Name           string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email          string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash   string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role           string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	GraduationYear *int   `gorm:"type:smallint"                                  json:"graduation_year,omitempty"`
	VersionedModel
	DeletedAt *time.Time `gorm:"index"     json:"deleted_at,omitempty"`
	DeletedBy *string    `gorm:"type:uuid" json:"deleted_by,omitempty"`

	// 关联
	Groups []Group `gorm:"many2many:user_groups;joinForeignKey:UserID;joinReferences:GroupID" json:"groups,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// 年级常量（美式高中 9-12）
const (
	GradeFreshman  = 9
	GradeSophomore = 10
	GradeJunior    = 11
	GradeSenior    = 12
)

// Grade 按毕业年份推算当前年级
// 学年以 7 月为界：7 月起进入下一学年（当届 12 年级毕业年份 = 学年结束年）
// 无毕业年份（教职工）返回 0
func (u *User) Grade(asOf time.Time) int {
	if u.GraduationYear == nil {
		return 0
	}
	endYear := asOf.Year()
	if asOf.Month() >= time.July {
		endYear++
	}
	grade := GradeSenior - (*u.GraduationYear - endYear)
	if grade < GradeFreshman || grade > GradeSenior {
		return 0
	}
	return grade
}

// InGroup 判断用户是否属于指定用户组（需预加载 Groups）
func (u *User) InGroup(groupID string) bool {
	for _, g := range u.Groups {
		if g.GroupID == groupID {
			return true
		}
	}
	return false
}

// Group 用户组表 — 对应 groups（活动准入控制、批量报名的单位）
type Group struct {
	GroupID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	Description string `gorm:"type:varchar(500);not null;default:''"          json:"description"`
	BaseModel

	// 关联
	Users []User `gorm:"many2many:user_groups;joinForeignKey:GroupID;joinReferences:UserID" json:"users,omitempty"`
}

// TableName 指定表名
func (Group) TableName() string { return "groups" }
