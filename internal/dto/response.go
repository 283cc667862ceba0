package dto

// ── 通用分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ListResponse 通用列表响应
type ListResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// ── 通用简要信息 ──

// UserBrief 用户简要信息
type UserBrief struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Grade    int    `json:"grade,omitempty"`
}

// GroupBrief 用户组简要信息
type GroupBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoomBrief 教室简要信息
type RoomBrief struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"` // -1 表示不限
}

// SponsorBrief 指导教师简要信息
type SponsorBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BlockBrief 节次简要信息
type BlockBrief struct {
	ID          string `json:"id"`
	Date        string `json:"date"` // "2006-01-02"
	BlockLetter string `json:"block_letter"`
	Locked      bool   `json:"locked"`
}

// ActivityBrief 活动简要信息
type ActivityBrief struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}
