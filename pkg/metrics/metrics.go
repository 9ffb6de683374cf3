package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 打卡相关指标
	ClockEventTotal        metric.Int64Counter
	ClockEventDuration     metric.Float64Histogram
	LateClockInTotal       metric.Int64Counter
	EarlyClockOutTotal     metric.Int64Counter
	ForgottenRepairedTotal metric.Int64Counter

	// 补卡审批指标
	CorrectionDecisionTotal metric.Int64Counter

	// 提醒短信指标
	ReminderSentTotal metric.Int64Counter

	// HTTP 相关指标
	HTTPServerRequestTotal   metric.Int64Counter
	HTTPServerDuration       metric.Float64Histogram
	HTTPServerActiveRequests metric.Int64UpDownCounter
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("kaoqin")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	metrics = &OTelMetrics{}

	metrics.ClockEventTotal, err = meter.Int64Counter(
		"clock_event_total",
		metric.WithDescription("Total number of processed clock events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	metrics.ClockEventDuration, err = meter.Float64Histogram(
		"clock_event_duration_seconds",
		metric.WithDescription("Time spent processing a clock event in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.LateClockInTotal, err = meter.Int64Counter(
		"late_clock_in_total",
		metric.WithDescription("Total number of late clock-ins"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	metrics.EarlyClockOutTotal, err = meter.Int64Counter(
		"early_clock_out_total",
		metric.WithDescription("Total number of early clock-outs"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	metrics.ForgottenRepairedTotal, err = meter.Int64Counter(
		"forgotten_session_repaired_total",
		metric.WithDescription("Total number of repaired forgotten sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return err
	}

	metrics.CorrectionDecisionTotal, err = meter.Int64Counter(
		"correction_decision_total",
		metric.WithDescription("Total number of correction request decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return err
	}

	metrics.ReminderSentTotal, err = meter.Int64Counter(
		"reminder_sms_sent_total",
		metric.WithDescription("Total number of clock-in reminder SMS sent"),
		metric.WithUnit("{sms}"),
	)
	if err != nil {
		return err
	}

	metrics.HTTPServerRequestTotal, err = meter.Int64Counter(
		"http_server_request_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	metrics.HTTPServerDuration, err = meter.Float64Histogram(
		"http_server_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.HTTPServerActiveRequests, err = meter.Int64UpDownCounter(
		"http_server_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordClockEvent 记录一次打卡事件处理结果
func (m *OTelMetrics) RecordClockEvent(ctx context.Context, eventType, result string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("event_type", eventType),
		attribute.String("result", result),
	}

	m.ClockEventTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ClockEventDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
}

// RecordLateClockIn 记录一次迟到打卡
func (m *OTelMetrics) RecordLateClockIn(ctx context.Context) {
	m.LateClockInTotal.Add(ctx, 1)
}

// RecordEarlyClockOut 记录一次早退打卡
func (m *OTelMetrics) RecordEarlyClockOut(ctx context.Context) {
	m.EarlyClockOutTotal.Add(ctx, 1)
}

// RecordForgottenRepaired 记录遗忘会话修复
func (m *OTelMetrics) RecordForgottenRepaired(ctx context.Context, count int64) {
	m.ForgottenRepairedTotal.Add(ctx, count)
}

// RecordCorrectionDecision 记录补卡审批结果
func (m *OTelMetrics) RecordCorrectionDecision(ctx context.Context, action string) {
	m.CorrectionDecisionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
	))
}

// RecordReminderSent 记录提醒短信发送
func (m *OTelMetrics) RecordReminderSent(ctx context.Context, result string) {
	m.ReminderSentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}
