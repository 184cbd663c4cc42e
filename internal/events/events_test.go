package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/reimbursement-service/internal/domain"
)

type recordingSink struct {
	events []Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, event Event) error {
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingSink) Close() error { return nil }

func TestDispatcher_DeliversToSubscribersAndSinks(t *testing.T) {
	sink := &recordingSink{}
	d := NewInMemoryDispatcher(zap.NewNop(), sink)

	var got []EventType
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})

	created := NewEvent(EventTicketCreated, 1, Actor{UserID: 2, Role: domain.RoleEmployee}, TicketCreatedPayload{PurchaserID: 2, Amount: 42.5})
	changed := NewEvent(EventTicketStatusChanged, 1, Actor{UserID: 3}, TicketStatusChangedPayload{})

	require.NoError(t, d.Publish(context.Background(), created))
	require.NoError(t, d.Publish(context.Background(), changed))

	assert.Equal(t, []EventType{EventTicketCreated}, got)
	require.Len(t, sink.events, 2)
	assert.Equal(t, created.ID, sink.events[0].ID)
}

func TestDispatcher_FailuresAreLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sink := &recordingSink{err: errors.New("broker down")}
	d := NewInMemoryDispatcher(zap.New(core), sink)
	d.Subscribe(EventUserSuspensionChanged, func(context.Context, Event) error {
		return errors.New("handler broke")
	})

	err := d.Publish(context.Background(), NewEvent(EventUserSuspensionChanged, 5, Actor{}, UserSuspensionChangedPayload{Suspended: true}))
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("event sink failed").Len())
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventTicketCreated, 9, Actor{UserID: 1}, nil)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, int64(9), e.SubjectID)
	assert.WithinDuration(t, time.Now().UTC(), e.Timestamp, time.Minute)
	assert.NotEqual(t, e.ID, NewEvent(EventTicketCreated, 9, Actor{}, nil).ID)
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	closed   bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestAMQPSink_RoutesByEventType(t *testing.T) {
	ch := &fakeChannel{}
	sink := &AMQPSink{ch: ch, exchange: "reimbursement.events"}

	event := NewEvent(EventTicketStatusChanged, 4, Actor{UserID: 1, Role: domain.RoleEmployer}, TicketStatusChangedPayload{
		PurchaserID: 2,
		OldStatus:   domain.TicketStatusPending,
		NewStatus:   domain.TicketStatusApproved,
	})
	require.NoError(t, sink.Publish(context.Background(), event))

	assert.Equal(t, "reimbursement.events", ch.exchange)
	assert.Equal(t, "ticket_status_changed", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, event.ID, ch.msg.MessageId)

	var decoded struct {
		Type    string `json:"type"`
		Payload struct {
			OldStatus string `json:"old_status"`
			NewStatus string `json:"new_status"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "PENDING", decoded.Payload.OldStatus)
	assert.Equal(t, "APPROVED", decoded.Payload.NewStatus)

	require.NoError(t, sink.Close())
	assert.True(t, ch.closed)
}

func TestRedisSink_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sink := NewRedisSink(client, "reimbursement.events")
	assert.Error(t, sink.Publish(ctx, NewEvent(EventTicketCreated, 1, Actor{}, nil)))
	assert.NoError(t, sink.Close())
}
