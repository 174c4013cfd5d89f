package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type recordingPublisher struct {
	events []BinEvent
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, event BinEvent) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("expected deadline")
	}
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

func TestDispatchPublishesBatchEvenAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pub := &recordingPublisher{}
	id := uuid.New()
	Dispatch(ctx, pub, time.Second,
		BinEvent{Type: TypeFillLevel, BinID: id, FillLevel: 90},
		BinEvent{Type: TypeBinFull, BinID: id, FillLevel: 90},
	)

	assert.Len(t, pub.events, 2)
	assert.Equal(t, TypeBinFull, pub.events[1].Type)
}

func TestDispatchSwallowsErrors(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	assert.NotPanics(t, func() {
		Dispatch(context.Background(), pub, time.Second, BinEvent{Type: TypeEmptied})
	})
	Dispatch(context.Background(), nil, time.Second, BinEvent{Type: TypeEmptied})
}

func TestNoopPublisher(t *testing.T) {
	var pub Publisher = Noop{}
	assert.NoError(t, pub.Publish(context.Background(), BinEvent{}))
	assert.NoError(t, pub.Close())
}
