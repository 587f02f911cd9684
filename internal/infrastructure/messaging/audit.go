package messaging

import (
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"

	"github.com/xiebiao/library/internal/domain/loan"
)

// RoutingKeys 审计消费者订阅的路由键
var RoutingKeys = []string{"loan.*", "member.*"}

// AuditHandler 把收到的借还事件写成结构化日志
// 返回的函数签名与mq.Handler一致
func AuditHandler(logger *slog.Logger) func(routingKey string, body []byte) error {
	return func(routingKey string, body []byte) error {
		if !jsoniter.ConfigFastest.Valid(body) {
			return fmt.Errorf("decode %s event: invalid json", routingKey)
		}
		var ev loan.Event
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("decode %s event: %w", routingKey, err)
		}

		attrs := []any{
			"type", ev.Type,
			"member_id", ev.MemberID,
			"occurred_at", ev.OccurredAt,
		}
		if ev.ISBN != "" {
			attrs = append(attrs, "isbn", ev.ISBN)
		}
		if !ev.DueDate.IsZero() {
			attrs = append(attrs, "due_date", ev.DueDate.Format("2006-01-02"))
		}
		if ev.Amount > 0 {
			attrs = append(attrs, "amount", loan.FormatAmount(ev.Amount))
		}
		logger.Info("library event", attrs...)
		return nil
	}
}
