// Package mq RabbitMQ发布/消费封装
//
// 拓扑：
//
//	Publisher --(routing key: loan.borrowed)--> Exchange(topic) --(binding: loan.*)--> Queue --> Consumer
//
// 消息体统一为JSON，DeliveryMode为Persistent。
package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xiebiao/library/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Publisher 消息发布者
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
}

// NewPublisher 连接Broker并声明持久化Exchange
func NewPublisher(url, exchange, exchangeType string, logger *slog.Logger) (*Publisher, error) {
	conn, channel, err := open(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	logger.Info("mq publisher ready", "exchange", exchange, "type", exchangeType)
	return &Publisher{conn: conn, channel: channel, exchange: exchange, logger: logger}, nil
}

// Publish 序列化message并以routingKey发布
func (p *Publisher) Publish(ctx context.Context, routingKey string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
		"exchange": p.exchange, "routing_key": routingKey, "result": result,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	p.logger.Debug("message published", "routing_key", routingKey, "bytes", len(body))
	return nil
}

// Close 关闭Channel和连接
func (p *Publisher) Close() error {
	return closeAll(p.channel, p.conn)
}

// Handler 处理一条消息，返回error时消息被Nack
type Handler func(routingKey string, body []byte) error

// Consumer 消息消费者
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *slog.Logger
}

// NewConsumer 声明Exchange和持久化Queue，并按routingKeys绑定（支持通配符）
func NewConsumer(url, exchange, exchangeType, queue string, routingKeys []string, logger *slog.Logger) (*Consumer, error) {
	conn, channel, err := open(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	q, err := channel.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		_ = closeAll(channel, conn)
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	for _, key := range routingKeys {
		if err := channel.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			_ = closeAll(channel, conn)
			return nil, fmt.Errorf("bind queue %s to %s: %w", q.Name, key, err)
		}
	}

	logger.Info("mq consumer ready", "queue", q.Name, "routing_keys", routingKeys)
	return &Consumer{conn: conn, channel: channel, queue: q.Name, logger: logger}, nil
}

// Consume 阻塞消费直到ctx取消
//
// 手动确认：
//  1. handler成功 -> Ack
//  2. 首次失败 -> Nack并重新入队
//  3. 重投后仍失败 -> Nack丢弃，避免毒消息无限循环
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("mq consumer stopped", "queue", c.queue)
			return nil

		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.dispatch(msg, handler)
		}
	}
}

func (c *Consumer) dispatch(msg amqp.Delivery, handler Handler) {
	if err := handler(msg.RoutingKey, msg.Body); err != nil {
		requeue := !msg.Redelivered
		c.logger.Warn("message handling failed",
			"routing_key", msg.RoutingKey, "requeue", requeue, "error", err)
		_ = msg.Nack(false, requeue)
		metrics.IncCounterVec(metrics.MessagesConsumedTotal, map[string]string{"queue": c.queue, "result": "failure"})
		return
	}

	_ = msg.Ack(false)
	metrics.IncCounterVec(metrics.MessagesConsumedTotal, map[string]string{"queue": c.queue, "result": "success"})
}

// Close 关闭Channel和连接
func (c *Consumer) Close() error {
	return closeAll(c.channel, c.conn)
}

func open(url, exchange, exchangeType string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, exchangeType, true, false, false, false, nil); err != nil {
		_ = closeAll(channel, conn)
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return conn, channel, nil
}

func closeAll(channel *amqp.Channel, conn *amqp.Connection) error {
	var errs []error
	if channel != nil {
		errs = append(errs, channel.Close())
	}
	if conn != nil {
		errs = append(errs, conn.Close())
	}
	return errors.Join(errs...)
}
