package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"KaoQin/pkg/errors"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

func errorToHTTPStatus(err error) int {
	def, ok := errors.IsDefinition(err)
	if !ok {
		return http.StatusInternalServerError
	}

	// 根据错误码映射 HTTP 状态码
	switch def.Code {
	case "UNAUTHORIZED":
		return http.StatusUnauthorized // 401
	case "ADMIN_REQUIRED", "MOBILE_DEVICE_FORBIDDEN":
		return http.StatusForbidden // 403
	case "USER_NOT_FOUND", "SHIFT_NOT_FOUND", "ATTENDANCE_NOT_FOUND", "REQUEST_NOT_FOUND":
		return http.StatusNotFound // 404
	case "BEFORE_SHIFT_START", "LATE_REASON_REQUIRED", "ALREADY_CLOCKED_IN",
		"NO_OPEN_SEGMENT", "BREAK_ACTIVE", "BREAK_ALREADY_ACTIVE",
		"NO_ACTIVE_BREAK", "SEGMENT_CLOSED", "EARLY_OUT_REASON_REQUIRED",
		"BREAK_REASON_REQUIRED", "REQUEST_ALREADY_DECIDED", "DUPLICATE_REQUEST",
		"ATTENDANCE_EXISTS", "INVALID_REQUEST_TYPE", "INVALID_REQUEST_ACTION",
		"INVALID_REQUEST", "INVALID_USER_ID",
		"INVALID_DATE", "INVALID_TIME", "INVALID_MONTH":
		return http.StatusBadRequest // 400
	case "RATE_LIMITED", "OPERATION_IN_PROGRESS":
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	statusCode := errorToHTTPStatus(err)

	var code, message string
	var details map[string]interface{}

	if def, ok := errors.IsDefinition(err); ok {
		code = def.Code
		message = def.Message
	} else {
		code = "INTERNAL_ERROR"
		message = err.Error()
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	statusCode := errorToHTTPStatus(err)

	var code, message string
	if def, ok := errors.IsDefinition(err); ok {
		code = def.Code
		message = def.Message
	} else {
		code = "INTERNAL_ERROR"
		message = err.Error()
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}

// NoContent 返回 204 No Content（用于 DELETE 等操作）
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
