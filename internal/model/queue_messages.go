package model

// ClockReminderMessage 班前打卡提醒消息，按班次分批下发
type ClockReminderMessage struct {
	MessageID    string  `json:"message_id"` // 消息唯一ID，用于幂等性检查
	BatchID      string  `json:"batch_id"`
	Date         string  `json:"date"` // 考勤日 YYYY-MM-DD
	ShiftID      int64   `json:"shift_id"`
	ScheduledAt  string  `json:"scheduled_at"`
	UserIDs      []int64 `json:"user_ids"`
	DelaySeconds int     `json:"delay_seconds"`
}

// ForgottenSessionMessage 遗忘会话扫描消息，隔天凌晨触发
type ForgottenSessionMessage struct {
	MessageID   string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	Date        string `json:"date"`       // 待修复的考勤日 YYYY-MM-DD
	ScheduledAt string `json:"scheduled_at"`
}

// CorrectionDecidedMessage 补卡审批结果消息，worker 消费后给申请人发通知
type CorrectionDecidedMessage struct {
	MessageID string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	RequestID int64  `json:"request_id"` // 补卡申请 public_id
	UserID    int64  `json:"user_id"`
	Date      string `json:"date"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	DecidedAt string `json:"decided_at"`
}

// AttendanceEventMessage 考勤事件消息（用于事件总线）
type AttendanceEventMessage struct {
	Payload    map[string]interface{} `json:"payload"`
	EventKey   string                 `json:"event_key"`
	EventType  string                 `json:"event_type"`
	OccurredAt string                 `json:"occurred_at"`
}
