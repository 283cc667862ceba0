package model

// CapacityUnlimited 容量不限的哨兵值
const CapacityUnlimited = -1

// Room 教室表 — 对应 rooms
type Room struct {
	RoomID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_id"`
	Name     string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	Capacity int    `gorm:"not null;default:28"                            json:"capacity"` // -1 表示不限
	BaseModel
}

// TableName 指定表名
func (Room) TableName() string { return "rooms" }

// SumRoomCapacity 合计一组教室的容量
// 任一教室容量为 -1 时整体视为不限
func SumRoomCapacity(rooms []Room) int {
	total := 0
	for _, r := range rooms {
		if r.Capacity == CapacityUnlimited {
			return CapacityUnlimited
		}
		total += r.Capacity
	}
	return total
}

// Sponsor 指导教师表 — 对应 sponsors
// UserID 可空：外聘指导教师仅记录姓名
type Sponsor struct {
	SponsorID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"sponsor_id"`
	Name             string  `gorm:"type:varchar(100);not null"                     json:"name"`
	UserID           *string `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	OnlineAttendance bool    `gorm:"not null;default:true"                          json:"online_attendance"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Sponsor) TableName() string { return "sponsors" }
