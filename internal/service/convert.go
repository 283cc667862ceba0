package service

import (
	"time"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
)

// ── 模型 → DTO 公共转换 ──

const timeLayout = "2006-01-02 15:04:05"
const dateLayout = "2006-01-02"

func toUserBrief(u *model.User) dto.UserBrief {
	return dto.UserBrief{
		ID:       u.UserID,
		Username: u.Username,
		Name:     u.Name,
		Grade:    u.Grade(time.Now()),
	}
}

func toGroupBrief(g *model.Group) dto.GroupBrief {
	return dto.GroupBrief{ID: g.GroupID, Name: g.Name}
}

func toRoomBrief(r *model.Room) dto.RoomBrief {
	return dto.RoomBrief{ID: r.RoomID, Name: r.Name, Capacity: r.Capacity}
}

func toRoomBriefs(rooms []model.Room) []dto.RoomBrief {
	if len(rooms) == 0 {
		return nil
	}
	out := make([]dto.RoomBrief, len(rooms))
	for i := range rooms {
		out[i] = toRoomBrief(&rooms[i])
	}
	return out
}

func toSponsorBrief(s *model.Sponsor) dto.SponsorBrief {
	return dto.SponsorBrief{ID: s.SponsorID, Name: s.Name}
}

func toSponsorBriefs(sponsors []model.Sponsor) []dto.SponsorBrief {
	if len(sponsors) == 0 {
		return nil
	}
	out := make([]dto.SponsorBrief, len(sponsors))
	for i := range sponsors {
		out[i] = toSponsorBrief(&sponsors[i])
	}
	return out
}

func toBlockBrief(b *model.Block) dto.BlockBrief {
	return dto.BlockBrief{
		ID:          b.BlockID,
		Date:        b.Date.Format(dateLayout),
		BlockLetter: b.BlockLetter,
		Locked:      b.Locked,
	}
}

func toActivityBrief(a *model.Activity) dto.ActivityBrief {
	return dto.ActivityBrief{ID: a.ActivityID, Name: a.Name, Status: a.Status}
}
