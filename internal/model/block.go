package model

import "time"

// Block 活动节次表 — 对应 blocks
// 以 (日期, 字母) 唯一标识一节第八节活动课，如 "2025-03-05 A"
type Block struct {
	BlockID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"   json:"block_id"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:uniq_block"        json:"date"`
	BlockLetter string    `gorm:"type:varchar(10);not null;uniqueIndex:uniq_block" json:"block_letter"`
	Locked      bool      `gorm:"not null;default:false"                           json:"locked"`
	SignupTime  *string   `gorm:"type:time"                                        json:"signup_time,omitempty"` // "HH:MM" 报名截止时刻（仅前端展示）
	Comments    string    `gorm:"type:varchar(500);not null;default:''"            json:"comments"`
	VersionedModel
}

// TableName 指定表名
func (Block) TableName() string { return "blocks" }

// SameDay 两个节次是否在同一天
func (b *Block) SameDay(other *Block) bool {
	y1, m1, d1 := b.Date.Date()
	y2, m2, d2 := other.Date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Before 节次全序：按 (日期, 字母) 升序
func (b *Block) Before(other *Block) bool {
	if !b.Date.Equal(other.Date) {
		return b.Date.Before(other.Date)
	}
	return b.BlockLetter < other.BlockLetter
}
