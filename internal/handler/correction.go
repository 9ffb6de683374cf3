package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"KaoQin/internal/middleware"
	"KaoQin/internal/model/dto"
	"KaoQin/internal/service"
	"KaoQin/pkg/errors"
	"KaoQin/pkg/response"
)

// CreateCorrection 提交补卡申请
// POST /v1/attendance/requests
func CreateCorrection(ctx context.Context, c *app.RequestContext) {
	publicID, err := requestPublicID(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	var req dto.CreateCorrectionRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Correction().Create(ctx, publicID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// ListCorrections 查询补卡申请列表
// GET /v1/attendance/requests
func ListCorrections(ctx context.Context, c *app.RequestContext) {
	publicID, err := requestPublicID(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	var query dto.CorrectionListQuery
	if err := c.BindAndValidate(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Correction().List(ctx, publicID, middleware.IsAdminRequest(ctx, c), query)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, result, map[string]interface{}{
		"count": len(result),
	})
}

// DecideCorrection 审批补卡申请（管理员）
// POST /v1/attendance/requests/action
func DecideCorrection(ctx context.Context, c *app.RequestContext) {
	publicID, err := requestPublicID(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	var req dto.DecideCorrectionRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if req.RequestID <= 0 {
		response.Error(ctx, c, errors.RequestNotFound)
		return
	}

	result, err := service.Correction().Decide(ctx, publicID, req.RequestID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
