package amqp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/log"
	"saldo/internal/notify"
)

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(uint64, bool) error { f.acked = true; return nil }

func (f *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func (f *fakeAck) Reject(_ uint64, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func delivery(t *testing.T, msg *NotificationMessage) (amqp091.Delivery, *fakeAck) {
	t.Helper()
	body, err := msg.ToJSON()
	require.NoError(t, err)
	ack := &fakeAck{}
	return amqp091.Delivery{Acknowledger: ack, Body: body}, ack
}

func sample() *NotificationMessage {
	return NewNotificationMessage(notify.Notification{
		Kind:      notify.KindTargetAchieved,
		Title:     "Target Tercapai! 🎉",
		Body:      `Selamat! Target "Rumah" telah tercapai`,
		OwnerID:   "owner-1",
		TargetID:  "t1",
		CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	})
}

func TestMessageCarriesNotification(t *testing.T) {
	msg := sample()
	body, err := msg.ToJSON()
	require.NoError(t, err)

	decoded, err := NotificationMessageFromJSON(body)
	require.NoError(t, err)
	n := decoded.Notification()
	assert.Equal(t, notify.KindTargetAchieved, n.Kind)
	assert.Equal(t, "t1", n.TargetID)
	assert.True(t, n.CreatedAt.Equal(msg.CreatedAt))
}

func TestMessageValidation(t *testing.T) {
	_, err := NotificationMessageFromJSON([]byte(`{"kind":"low_balance","owner_id":"o"}`))
	assert.EqualError(t, err, "missing title")

	_, err = NotificationMessageFromJSON([]byte(`{not json`))
	assert.Error(t, err)
}

func TestHandleDeliveryAcksOnSuccess(t *testing.T) {
	d, ack := delivery(t, sample())
	var got *NotificationMessage
	handleDelivery(context.Background(), log.Nop(), d, func(_ context.Context, m *NotificationMessage) error {
		got = m
		return nil
	})

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	require.NotNil(t, got)
	assert.Equal(t, "owner-1", got.OwnerID)
}

func TestHandleDeliveryRequeuesOnHandlerError(t *testing.T) {
	d, ack := delivery(t, sample())
	handleDelivery(context.Background(), log.Nop(), d, func(context.Context, *NotificationMessage) error {
		return errors.New("sink unavailable")
	})

	assert.False(t, ack.acked)
	assert.True(t, ack.nacked)
	assert.True(t, ack.requeued)
}

func TestHandleDeliveryDropsMalformed(t *testing.T) {
	ack := &fakeAck{}
	called := false
	handleDelivery(context.Background(), log.Nop(),
		amqp091.Delivery{Acknowledger: ack, Body: []byte(`{"kind":""}`)},
		func(context.Context, *NotificationMessage) error {
			called = true
			return nil
		})

	assert.False(t, called)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
}
