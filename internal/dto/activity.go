package dto

// ── 活动模块 DTO ──

// ActivityFlags 活动行为标志
type ActivityFlags struct {
	Restricted     bool `json:"restricted"`
	Presign        bool `json:"presign"`
	OneADay        bool `json:"one_a_day"`
	BothBlocks     bool `json:"both_blocks"`
	Sticky         bool `json:"sticky"`
	Special        bool `json:"special"`
	Administrative bool `json:"administrative"`
}

// GradeFlags 年级准入标志
type GradeFlags struct {
	FreshmenAllowed   bool `json:"freshmen_allowed"`
	SophomoresAllowed bool `json:"sophomores_allowed"`
	JuniorsAllowed    bool `json:"juniors_allowed"`
	SeniorsAllowed    bool `json:"seniors_allowed"`
}

// CreateActivityRequest 创建活动请求
type CreateActivityRequest struct {
	Name            string `json:"name"             binding:"required,min=1,max=100"`
	Description     string `json:"description"      binding:"omitempty,max=5000"`
	DefaultCapacity int    `json:"default_capacity" binding:"omitempty,min=-1"`
	ActivityFlags
	GradeFlags
	RoomIDs          []string `json:"room_ids"           binding:"omitempty,dive,uuid"`
	SponsorIDs       []string `json:"sponsor_ids"        binding:"omitempty,dive,uuid"`
	GroupsAllowed    []string `json:"groups_allowed"     binding:"omitempty,dive,uuid"`
	UsersAllowed     []string `json:"users_allowed"      binding:"omitempty,dive,uuid"`
	UsersBlacklisted []string `json:"users_blacklisted"  binding:"omitempty,dive,uuid"`
}

// UpdateActivityRequest 更新活动请求
// 关联集合字段为 nil 表示不变，为空数组表示清空
type UpdateActivityRequest struct {
	Name            *string `json:"name"             binding:"omitempty,min=1,max=100"`
	Description     *string `json:"description"      binding:"omitempty,max=5000"`
	DefaultCapacity *int    `json:"default_capacity" binding:"omitempty,min=-1"`

	Restricted     *bool `json:"restricted"`
	Presign        *bool `json:"presign"`
	OneADay        *bool `json:"one_a_day"`
	BothBlocks     *bool `json:"both_blocks"`
	Sticky         *bool `json:"sticky"`
	Special        *bool `json:"special"`
	Administrative *bool `json:"administrative"`

	FreshmenAllowed   *bool `json:"freshmen_allowed"`
	SophomoresAllowed *bool `json:"sophomores_allowed"`
	JuniorsAllowed    *bool `json:"juniors_allowed"`
	SeniorsAllowed    *bool `json:"seniors_allowed"`

	RoomIDs          []string `json:"room_ids"          binding:"omitempty,dive,uuid"`
	SponsorIDs       []string `json:"sponsor_ids"       binding:"omitempty,dive,uuid"`
	GroupsAllowed    []string `json:"groups_allowed"    binding:"omitempty,dive,uuid"`
	UsersAllowed     []string `json:"users_allowed"     binding:"omitempty,dive,uuid"`
	UsersBlacklisted []string `json:"users_blacklisted" binding:"omitempty,dive,uuid"`

	Version int `json:"version" binding:"required,min=1"`
}

// ActivityListRequest 活动列表查询参数
type ActivityListRequest struct {
	IncludeDeleted bool `form:"include_deleted"`
	PaginationRequest
}

// ActivityResponse 活动响应
type ActivityResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DefaultCapacity int    `json:"default_capacity"`
	Status          string `json:"status"`
	ActivityFlags
	GradeFlags
	Rooms            []RoomBrief    `json:"rooms,omitempty"`
	Sponsors         []SponsorBrief `json:"sponsors,omitempty"`
	GroupsAllowed    []GroupBrief   `json:"groups_allowed,omitempty"`
	UsersAllowed     []UserBrief    `json:"users_allowed,omitempty"`
	UsersBlacklisted []UserBrief    `json:"users_blacklisted,omitempty"`
	Version          int            `json:"version"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at"`
}
