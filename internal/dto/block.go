package dto

// ── 节次模块 DTO ──

// CreateBlockRequest 创建单个节次请求
type CreateBlockRequest struct {
	Date        string  `json:"date"         binding:"required,datetime=2006-01-02"`
	BlockLetter string  `json:"block_letter" binding:"required,min=1,max=10"`
	Locked      bool    `json:"locked"`
	SignupTime  *string `json:"signup_time"  binding:"omitempty,datetime=15:04"`
	Comments    string  `json:"comments"     binding:"omitempty,max=500"`
}

// BatchCreateBlocksRequest 批量建节请求
// 在 [start_date, end_date] 内的每个指定星期几按字母建节，已存在的跳过
type BatchCreateBlocksRequest struct {
	StartDate string   `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string   `json:"end_date"   binding:"required,datetime=2006-01-02"`
	Weekdays  []int    `json:"weekdays"   binding:"required,min=1,dive,min=0,max=6"` // 0=周日
	Letters   []string `json:"letters"    binding:"omitempty,dive,min=1,max=10"`     // 为空使用配置默认
}

// UpdateBlockRequest 更新节次请求
type UpdateBlockRequest struct {
	Date        *string `json:"date"         binding:"omitempty,datetime=2006-01-02"`
	BlockLetter *string `json:"block_letter" binding:"omitempty,min=1,max=10"`
	Locked      *bool   `json:"locked"`
	SignupTime  *string `json:"signup_time"  binding:"omitempty,datetime=15:04"`
	Comments    *string `json:"comments"     binding:"omitempty,max=500"`
	Version     int     `json:"version"      binding:"required,min=1"`
}

// BlockListRequest 节次列表查询参数
type BlockListRequest struct {
	From *string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   *string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
	PaginationRequest
}

// BlockResponse 节次响应
type BlockResponse struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	BlockLetter string  `json:"block_letter"`
	Locked      bool    `json:"locked"`
	SignupTime  *string `json:"signup_time,omitempty"`
	Comments    string  `json:"comments"`
	Version     int     `json:"version"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// BatchCreateBlocksResponse 批量建节结果
type BatchCreateBlocksResponse struct {
	Requested int64 `json:"requested"` // 期望建节数
	Created   int64 `json:"created"`   // 实际新建数（其余已存在）
}
