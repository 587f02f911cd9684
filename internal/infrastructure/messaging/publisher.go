// Package messaging 借还事件的RabbitMQ适配
//
// 路由键即事件类型：
//
//	loan.borrowed     借书成功
//	loan.returned     还书成功（amount为结算罚款）
//	member.fined      产生逾期罚款
//	member.fine_paid  缴纳罚款
package messaging

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/application/library"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/circuitbreaker"
)

// Broker 消息发布能力，由*mq.Publisher实现
type Broker interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// EventPublisher 借还事件发布者，Broker故障时熔断
type EventPublisher struct {
	broker  Broker
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
}

var _ library.EventPublisher = (*EventPublisher)(nil)

// NewEventPublisher 创建事件发布者，单次发布超时timeout（<=0表示不限制）
func NewEventPublisher(broker Broker, timeout time.Duration) *EventPublisher {
	return &EventPublisher{
		broker:  broker,
		timeout: timeout,
		breaker: circuitbreaker.NewCircuitBreaker("rabbitmq", circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
		}),
	}
}

// Publish 以事件类型为路由键发布
func (p *EventPublisher) Publish(ctx context.Context, ev loan.Event) error {
	return p.breaker.Execute(func() error {
		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		return p.broker.Publish(ctx, string(ev.Type), ev)
	})
}
