package mq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"KaoQin/config"
)

var (
	conn    *amqp.Connection
	connMu  sync.RWMutex
	mqOnce  sync.Once
	initErr error
)

// 交换机/队列拓扑
const (
	AttendanceEventExchange = "attendance.events"  // topic，考勤事件总线
	ReminderDelayedExchange = "attendance.delayed" // x-delayed-message，班前提醒

	ReminderQueue   = "attendance.reminder"
	EventAuditQueue = "attendance.event.audit"

	ReminderRoutingKey = "reminder.clock_in"
)

func Init() error {
	mqOnce.Do(func() {
		url := config.Cfg.GetRabbitMQURL()

		var c *amqp.Connection
		c, initErr = amqp.Dial(url)
		if initErr != nil {
			return
		}

		connMu.Lock()
		conn = c
		connMu.Unlock()

		initErr = declareTopology()
	})

	return initErr
}

// Connection 返回底层连接，消费者各自开 channel
func Connection() *amqp.Connection {
	connMu.RLock()
	defer connMu.RUnlock()
	return conn
}

func declareTopology() error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(AttendanceEventExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	// 延迟交换机依赖 rabbitmq_delayed_message_exchange 插件
	if err := ch.ExchangeDeclare(ReminderDelayedExchange, "x-delayed-message", true, false, false, false, amqp.Table{
		"x-delayed-type": "direct",
	}); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(ReminderQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(ReminderQueue, ReminderRoutingKey, ReminderDelayedExchange, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(EventAuditQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(EventAuditQueue, "attendance.#", AttendanceEventExchange, false, nil); err != nil {
		return err
	}

	return nil
}

func Close(ctx context.Context) error {
	connMu.Lock()
	defer connMu.Unlock()

	if conn == nil {
		return nil
	}

	err := conn.Close()
	conn = nil
	return err
}
