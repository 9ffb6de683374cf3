package dto

import "time"

// ========== 补卡相关 DTO ==========

// CreateCorrectionRequest 提交补卡申请
type CreateCorrectionRequest struct {
	Date          string `json:"date" binding:"required"`           // YYYY-MM-DD
	Type          string `json:"type" binding:"required"`           // clock-in / clock-out / break-in / break-out
	RequestedTime string `json:"requested_time" binding:"required"` // RFC3339
	Reason        string `json:"reason" binding:"required"`
}

// CorrectionView 补卡申请视图
type CorrectionView struct {
	RequestedTime time.Time  `json:"requested_time"`
	CreatedAt     time.Time  `json:"created_at"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
	RequestID     int64      `json:"request_id"`
	UserID        int64      `json:"user_id"`
	Date          string     `json:"date"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	Reason        string     `json:"reason"`
	DecisionNote  string     `json:"decision_note,omitempty"`
}

// CorrectionListQuery 补卡申请列表查询参数
type CorrectionListQuery struct {
	Status string `form:"status"`
	UserID int64  `form:"user_id"` // 管理员可按员工过滤
	Limit  int    `form:"limit"`
}

// DecideCorrectionRequest 审批补卡申请
type DecideCorrectionRequest struct {
	RequestID int64  `json:"request_id" binding:"required"`
	Action    string `json:"action" binding:"required"` // approve / reject
	Note      string `json:"note"`
}
