package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"campus-portal/backend/config"
)

// Publisher 领域事件发布器（RabbitMQ topic exchange）
// 发布失败只记日志不回传业务层：通知事件是尽力而为的旁路，
// 不能因为 MQ 故障阻断报名/考勤主流程
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewPublisher 建立 MQ 连接并声明 exchange
// cfg.URL 为空表示未启用消息队列，返回 nil Publisher（各方法对 nil 安全）
func NewPublisher(cfg *config.MQConfig, logger *zap.Logger) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // autoDelete
		false,        // internal
		false,        // noWait
		nil,          // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, ch: ch, exchange: cfg.Exchange, logger: logger}, nil
}

// Publish 发布事件，消息持久化
func (p *Publisher) Publish(ctx context.Context, routingKey string, event interface{}) {
	if p == nil {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("序列化事件失败", zap.String("routing_key", routingKey), zap.Error(err))
		return
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("发布事件失败", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

// Close 关闭通道与连接
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if err := p.ch.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}
