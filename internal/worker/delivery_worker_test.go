package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/amqp"
	"saldo/internal/clock"
	"saldo/internal/notify"
	"saldo/internal/storage"
)

type fakeSink struct {
	got []notify.Notification
	err error
}

func (s *fakeSink) Deliver(_ context.Context, n notify.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, n)
	return nil
}

type fakeRecorder struct {
	records []storage.NotificationRecord
	err     error
}

func (r *fakeRecorder) RecordNotification(_ context.Context, n storage.NotificationRecord) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.records = append(r.records, n)
	return int64(len(r.records)), nil
}

var now = time.Date(2026, 4, 2, 7, 0, 0, 0, time.UTC)

func message() *amqp.NotificationMessage {
	return &amqp.NotificationMessage{
		Kind:      string(notify.KindLowBalance),
		Title:     "Peringatan Saldo ⚠️",
		Body:      "Saldo Anda tinggal Rp 50.000",
		OwnerID:   "owner-1",
		CreatedAt: now.Add(-time.Minute),
	}
}

func TestHandleMessageDeliversAndRecords(t *testing.T) {
	sink, rec := &fakeSink{}, &fakeRecorder{}
	w := NewDeliveryWorker(sink, rec, clock.NewFake(now), nil)

	require.NoError(t, w.HandleMessage(context.Background(), message()))

	require.Len(t, sink.got, 1)
	assert.Equal(t, notify.KindLowBalance, sink.got[0].Kind)
	require.Len(t, rec.records, 1)
	assert.Equal(t, now, rec.records[0].DeliveredAt)
	assert.Equal(t, "owner-1", rec.records[0].OwnerID)

	delivered, failed := w.Stats()
	assert.Equal(t, int64(1), delivered)
	assert.Zero(t, failed)
}

func TestHandleMessageSinkFailureRequeues(t *testing.T) {
	sink, rec := &fakeSink{err: errors.New("push gateway down")}, &fakeRecorder{}
	w := NewDeliveryWorker(sink, rec, clock.NewFake(now), nil)

	err := w.HandleMessage(context.Background(), message())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliver low_balance notification")
	assert.Empty(t, rec.records)

	_, failed := w.Stats()
	assert.Equal(t, int64(1), failed)
}

func TestHandleMessageRecordFailureIsNotRetried(t *testing.T) {
	sink := &fakeSink{}
	w := NewDeliveryWorker(sink, &fakeRecorder{err: errors.New("disk full")}, clock.NewFake(now), nil)

	assert.NoError(t, w.HandleMessage(context.Background(), message()))
	assert.Len(t, sink.got, 1)
}

func TestHandleMessageWithoutRecorder(t *testing.T) {
	sink := &fakeSink{}
	w := NewDeliveryWorker(sink, nil, nil, nil)
	assert.NoError(t, w.HandleMessage(context.Background(), message()))
	assert.Len(t, sink.got, 1)
}
