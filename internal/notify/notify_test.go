package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject  string
	data     []byte
	flushed  bool
	drained  bool
	failWith error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.subject = subject
	f.data = data
	return nil
}

func (f *fakeConn) FlushWithContext(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("flush without deadline")
	}
	f.flushed = true
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestNATSPublisherPublishesJSON(t *testing.T) {
	fc := &fakeConn{}
	p := &NATSPublisher{conn: fc, subject: "docsite.builds"}

	ev := BuildEvent{
		BuildID:     "b-1",
		Outcome:     "success",
		StartedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		DurationMS:  1200,
		Pages:       42,
		Collections: map[string]int{"deployment": 4},
	}
	require.NoError(t, p.PublishBuild(context.Background(), ev))
	assert.Equal(t, "docsite.builds", fc.subject)
	assert.True(t, fc.flushed)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(fc.data, &decoded))
	assert.Equal(t, "b-1", decoded["build_id"])
	assert.InDelta(t, 42, decoded["pages"], 0)
	assert.NotContains(t, decoded, "error")

	require.NoError(t, p.Close())
	assert.True(t, fc.drained)
}

func TestNATSPublisherPropagatesErrors(t *testing.T) {
	p := &NATSPublisher{conn: &fakeConn{failWith: errors.New("boom")}, subject: "s"}
	err := p.PublishBuild(context.Background(), BuildEvent{BuildID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestNewNATSPublisherValidatesArguments(t *testing.T) {
	_, err := NewNATSPublisher("", "s")
	require.Error(t, err)
	_, err = NewNATSPublisher("nats://127.0.0.1:4222", "")
	require.Error(t, err)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	require.NoError(t, p.PublishBuild(context.Background(), BuildEvent{}))
	require.NoError(t, p.Close())
}
