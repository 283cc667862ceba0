package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB // mock 聚合时为 nil

	User              UserRepository
	Group             GroupRepository
	Room              RoomRepository
	Sponsor           SponsorRepository
	Activity          ActivityRepository
	Block             BlockRepository
	ScheduledActivity ScheduledActivityRepository
	Signup            SignupRepository
	Notification      NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:                db,
		User:              NewUserRepo(db),
		Group:             NewGroupRepo(db),
		Room:              NewRoomRepo(db),
		Sponsor:           NewSponsorRepo(db),
		Activity:          NewActivityRepo(db),
		Block:             NewBlockRepo(db),
		ScheduledActivity: NewScheduledActivityRepo(db),
		Signup:            NewSignupRepo(db),
		Notification:      NewNotificationRepo(db),
	}
}

// Transaction 在单个数据库事务中执行 fn
// fn 收到的 Repository 绑定事务连接，报名引擎据此保证
// "校验-删除-写入"原子执行；db 为 nil（mock 聚合）时直接调用 fn
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
