package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证/权限相关错误。
var (
	Unauthorized  = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	AdminRequired = Definition{Code: "ADMIN_REQUIRED", Message: "Admin role required"}
	InvalidUserID = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}

	MobileDeviceForbidden = Definition{Code: "MOBILE_DEVICE_FORBIDDEN", Message: "Clock actions are not allowed from mobile devices"}
)

// 打卡状态机错误。
var (
	BeforeShiftStart       = Definition{Code: "BEFORE_SHIFT_START", Message: "Cannot clock in before shift start"}
	LateReasonRequired     = Definition{Code: "LATE_REASON_REQUIRED", Message: "Reason required for late clock-in"}
	AlreadyClockedIn       = Definition{Code: "ALREADY_CLOCKED_IN", Message: "An open work segment already exists"}
	NoOpenSegment          = Definition{Code: "NO_OPEN_SEGMENT", Message: "No open work segment"}
	BreakActive            = Definition{Code: "BREAK_ACTIVE", Message: "End the active break before clocking out"}
	BreakAlreadyActive     = Definition{Code: "BREAK_ALREADY_ACTIVE", Message: "A break is already active"}
	NoActiveBreak          = Definition{Code: "NO_ACTIVE_BREAK", Message: "No active break"}
	SegmentClosed          = Definition{Code: "SEGMENT_CLOSED", Message: "Clock in before ending a break"}
	EarlyOutReasonRequired = Definition{Code: "EARLY_OUT_REASON_REQUIRED", Message: "Reason required for early clock-out"}
	BreakReasonRequired    = Definition{Code: "BREAK_REASON_REQUIRED", Message: "Reason required after exceeding break allowance"}

	OperationInProgress = Definition{Code: "OPERATION_IN_PROGRESS", Message: "Another clock operation is in progress, retry shortly"}
	RateLimited         = Definition{Code: "RATE_LIMITED", Message: "Too many requests, please retry later"}
)

// 补卡申请错误。
var (
	RequestNotFound       = Definition{Code: "REQUEST_NOT_FOUND", Message: "Correction request not found"}
	RequestAlreadyDecided = Definition{Code: "REQUEST_ALREADY_DECIDED", Message: "Correction request already decided"}
	DuplicateRequest      = Definition{Code: "DUPLICATE_REQUEST", Message: "A pending correction request already exists for this date and type"}
	AttendanceExists      = Definition{Code: "ATTENDANCE_EXISTS", Message: "Attendance record already exists for this date"}
	InvalidRequestType    = Definition{Code: "INVALID_REQUEST_TYPE", Message: "Invalid correction request type"}
	InvalidRequestAction  = Definition{Code: "INVALID_REQUEST_ACTION", Message: "Invalid correction request action"}
)

// 参数格式错误。
var (
	InvalidDate  = Definition{Code: "INVALID_DATE", Message: "Invalid date format, expected YYYY-MM-DD"}
	InvalidTime  = Definition{Code: "INVALID_TIME", Message: "Invalid time format, expected RFC3339"}
	InvalidMonth = Definition{Code: "INVALID_MONTH", Message: "Invalid month format, expected YYYY-MM"}
)

// 查询类错误。
var (
	UserNotFound       = Definition{Code: "USER_NOT_FOUND", Message: "User not found"}
	ShiftNotFound      = Definition{Code: "SHIFT_NOT_FOUND", Message: "Shift not found"}
	AttendanceNotFound = Definition{Code: "ATTENDANCE_NOT_FOUND", Message: "Attendance record not found"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	Unauthorized.Code:          Unauthorized,
	AdminRequired.Code:         AdminRequired,
	InvalidUserID.Code:         InvalidUserID,
	MobileDeviceForbidden.Code: MobileDeviceForbidden,

	BeforeShiftStart.Code:       BeforeShiftStart,
	LateReasonRequired.Code:     LateReasonRequired,
	AlreadyClockedIn.Code:       AlreadyClockedIn,
	NoOpenSegment.Code:          NoOpenSegment,
	BreakActive.Code:            BreakActive,
	BreakAlreadyActive.Code:     BreakAlreadyActive,
	NoActiveBreak.Code:          NoActiveBreak,
	SegmentClosed.Code:          SegmentClosed,
	EarlyOutReasonRequired.Code: EarlyOutReasonRequired,
	BreakReasonRequired.Code:    BreakReasonRequired,
	OperationInProgress.Code:    OperationInProgress,
	RateLimited.Code:            RateLimited,

	RequestNotFound.Code:       RequestNotFound,
	RequestAlreadyDecided.Code: RequestAlreadyDecided,
	DuplicateRequest.Code:      DuplicateRequest,
	AttendanceExists.Code:      AttendanceExists,
	InvalidRequestType.Code:    InvalidRequestType,
	InvalidRequestAction.Code:  InvalidRequestAction,

	InvalidDate.Code:  InvalidDate,
	InvalidTime.Code:  InvalidTime,
	InvalidMonth.Code: InvalidMonth,

	UserNotFound.Code:       UserNotFound,
	ShiftNotFound.Code:      ShiftNotFound,
	AttendanceNotFound.Code: AttendanceNotFound,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// IsDefinition 判断 err 是否为业务错误。
func IsDefinition(err error) (Definition, bool) {
	var def Definition
	if errors.As(err, &def) {
		return def, true
	}
	return Definition{}, false
}

// SkipMessageError 表示消息应跳过且不重试（重复消息、幂等检查命中）。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return e.Reason
}

// IsSkipMessageError 判断错误是否为跳过消息错误。
func IsSkipMessageError(err error) bool {
	var skip *SkipMessageError
	return errors.As(err, &skip)
}
