package middleware

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"

	"KaoQin/internal/model"
	"KaoQin/pkg/errors"
	"KaoQin/pkg/response"
)

const DeviceTypeKey = "device_type"

// mobileUAMarkers 常见移动端 UA 特征，X-Device-Type 头优先
var mobileUAMarkers = []string{
	"Mobile", "Android", "iPhone", "iPad", "iPod",
}

func detectDeviceType(c *app.RequestContext) model.DeviceType {
	header := strings.ToLower(string(c.GetHeader("X-Device-Type")))
	switch header {
	case "mobile":
		return model.DeviceTypeMobile
	case "desktop":
		return model.DeviceTypeDesktop
	}

	ua := string(c.UserAgent())
	for _, marker := range mobileUAMarkers {
		if strings.Contains(ua, marker) {
			return model.DeviceTypeMobile
		}
	}

	return model.DeviceTypeDesktop
}

// DeviceDetectMiddleware 识别设备类型并放进请求上下文
func DeviceDetectMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		c.Set(DeviceTypeKey, string(detectDeviceType(c)))
		c.Next(ctx)
	}
}

// DesktopOnlyMiddleware 打卡路由只允许桌面端访问
func DesktopOnlyMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if GetDeviceType(c) == model.DeviceTypeMobile {
			response.Error(ctx, c, errors.MobileDeviceForbidden)
			c.Abort()
			return
		}
		c.Next(ctx)
	}
}

// GetDeviceType 读取已识别的设备类型，缺省按桌面端处理
func GetDeviceType(c *app.RequestContext) model.DeviceType {
	device, exists := c.Get(DeviceTypeKey)
	if !exists {
		return model.DeviceTypeDesktop
	}

	d, ok := device.(string)
	if !ok || d == "" {
		return model.DeviceTypeDesktop
	}

	return model.DeviceType(d)
}
