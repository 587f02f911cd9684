package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/circuitbreaker"
)

type fakeBroker struct {
	keys     []string
	messages []any
	err      error
}

func (b *fakeBroker) Publish(ctx context.Context, routingKey string, message any) error {
	if b.err != nil {
		return b.err
	}
	b.keys = append(b.keys, routingKey)
	b.messages = append(b.messages, message)
	return nil
}

func TestEventPublisher_RoutesByType(t *testing.T) {
	broker := &fakeBroker{}
	p := NewEventPublisher(broker, time.Second)

	ev := loan.Event{Type: loan.EventBorrowed, MemberID: "M1", ISBN: "1111111111"}
	require.NoError(t, p.Publish(context.Background(), ev))

	assert.Equal(t, []string{"loan.borrowed"}, broker.keys)
	assert.Equal(t, ev, broker.messages[0])
}

func TestEventPublisher_BreakerOpens(t *testing.T) {
	broker := &fakeBroker{err: errors.New("connection reset")}
	p := NewEventPublisher(broker, 0)
	ev := loan.Event{Type: loan.EventReturned, MemberID: "M1"}

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, p.Publish(context.Background(), ev), broker.err)
	}
	assert.ErrorIs(t, p.Publish(context.Background(), ev), circuitbreaker.ErrOpenState)
}

func TestAuditHandler(t *testing.T) {
	var buf bytes.Buffer
	handle := AuditHandler(slog.New(slog.NewJSONHandler(&buf, nil)))

	body, err := json.Marshal(loan.Event{
		Type:       loan.EventFined,
		MemberID:   "M1",
		ISBN:       "1111111111",
		Amount:     1400,
		OccurredAt: time.Date(2024, 3, 29, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, handle("member.fined", body))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "library event", line["msg"])
	assert.Equal(t, "member.fined", line["type"])
	assert.Equal(t, "14.00", line["amount"])
	assert.NotContains(t, line, "due_date")

	assert.Error(t, handle("loan.borrowed", []byte("{not json")))
}
