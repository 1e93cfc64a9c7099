package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type sentMsg struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeLink stands in for the broker connection behind an outbox.
type fakeLink struct {
	up   bool
	err  error
	sent []sentMsg
}

func (l *fakeLink) connected() bool { return l.up }

func (l *fakeLink) send(topic string, qos byte, retained bool, payload []byte) error {
	if l.err != nil {
		return l.err
	}
	l.sent = append(l.sent, sentMsg{topic, qos, retained, payload})
	return nil
}

var outboxTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestOutbox(capacity int) (*outbox, *fakeLink) {
	l := &fakeLink{}
	o := newOutbox(capacity, l.connected, l.send)
	o.now = func() time.Time { return outboxTime }
	return o, l
}

func msgN(i int) bufferedMsg {
	return bufferedMsg{topic: TopicEvents, payload: []byte{byte(i)}}
}

func systemInner(t *testing.T, payload []byte) SystemPayloadInner {
	t.Helper()
	var p SystemPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		t.Fatalf("invalid system payload %q: %v", payload, err)
	}
	return p.System
}

func TestOutboxSendsWhenConnected(t *testing.T) {
	o, l := newTestOutbox(10)
	l.up = true

	msg := bufferedMsg{topic: TopicSystem, payload: []byte("x"), qos: 1, retained: true}
	if err := o.publish(msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(l.sent))
	}
	got := l.sent[0]
	if got.topic != TopicSystem || got.qos != 1 || !got.retained {
		t.Errorf("send did not keep topic/qos/retained: %+v", got)
	}
	if o.buffered() != 0 {
		t.Errorf("expected empty buffer, got %d", o.buffered())
	}
}

func TestOutboxReturnsSendError(t *testing.T) {
	o, l := newTestOutbox(10)
	l.up = true
	l.err = errors.New("broker gone")

	if err := o.publish(msgN(0)); err == nil {
		t.Fatal("expected send error to be returned")
	}
	if o.buffered() != 0 {
		t.Errorf("failed send must not be buffered, got %d", o.buffered())
	}
}

func TestOutboxBuffersWhileOffline(t *testing.T) {
	o, l := newTestOutbox(10)

	for i := 0; i < 3; i++ {
		if err := o.publish(msgN(i)); err != nil {
			t.Fatalf("offline publish should not fail: %v", err)
		}
	}
	if len(l.sent) != 0 {
		t.Errorf("expected no sends while offline, got %d", len(l.sent))
	}
	if o.buffered() != 3 {
		t.Errorf("expected 3 buffered, got %d", o.buffered())
	}
}

func TestOutboxFirstConnectReplaysWithoutReconnected(t *testing.T) {
	o, l := newTestOutbox(10)
	o.publish(msgN(0))
	o.publish(msgN(1))

	l.up = true
	o.connectionUp()

	if len(l.sent) != 2 {
		t.Fatalf("expected 2 replayed messages, got %d", len(l.sent))
	}
	for i, m := range l.sent {
		if m.topic != TopicEvents || m.payload[0] != byte(i) {
			t.Errorf("replay %d: got topic %s payload %v", i, m.topic, m.payload)
		}
	}
	if o.buffered() != 0 {
		t.Errorf("expected buffer drained, got %d", o.buffered())
	}
}

func TestOutboxReconnectAnnouncesThenReplays(t *testing.T) {
	o, l := newTestOutbox(10)
	l.up = true
	o.connectionUp()

	l.up = false
	o.publish(msgN(7))

	l.up = true
	o.connectionUp()

	if len(l.sent) != 2 {
		t.Fatalf("expected RECONNECTED plus 1 replay, got %d sends", len(l.sent))
	}
	first := l.sent[0]
	if first.topic != TopicSystem || first.qos != 1 || first.retained {
		t.Errorf("RECONNECTED sent with wrong options: %+v", first)
	}
	inner := systemInner(t, first.payload)
	if inner.Event != "RECONNECTED" {
		t.Errorf("expected RECONNECTED, got %s", inner.Event)
	}
	if inner.Reason != "" {
		t.Errorf("expected no reason without drops, got %q", inner.Reason)
	}
	if inner.Timestamp != "2026-03-01T12:00:00Z" {
		t.Errorf("unexpected timestamp %s", inner.Timestamp)
	}
	if l.sent[1].payload[0] != 7 {
		t.Errorf("expected buffered message replayed after RECONNECTED")
	}
}

func TestOutboxReconnectReportsDropped(t *testing.T) {
	o, l := newTestOutbox(3)
	l.up = true
	o.connectionUp()

	l.up = false
	for i := 0; i < 5; i++ {
		o.publish(msgN(i))
	}

	l.up = true
	o.connectionUp()

	if len(l.sent) != 4 {
		t.Fatalf("expected RECONNECTED plus 3 replays, got %d sends", len(l.sent))
	}
	if got := systemInner(t, l.sent[0].payload).Reason; got != "DROPPED_2" {
		t.Errorf("expected reason DROPPED_2, got %q", got)
	}
	// Oldest two were overwritten.
	for i, m := range l.sent[1:] {
		if m.payload[0] != byte(i+2) {
			t.Errorf("replay %d: expected payload %d, got %d", i, i+2, m.payload[0])
		}
	}

	// Drop count resets once reported.
	l.sent = nil
	o.connectionUp()
	if len(l.sent) != 1 {
		t.Fatalf("expected only RECONNECTED, got %d sends", len(l.sent))
	}
	if got := systemInner(t, l.sent[0].payload).Reason; got != "" {
		t.Errorf("expected empty reason after drops reported, got %q", got)
	}
}

func TestOutboxReplayErrorsDoNotStopReplay(t *testing.T) {
	o, l := newTestOutbox(10)
	o.publish(msgN(0))
	o.publish(msgN(1))

	l.up = true
	l.err = errors.New("write failed")
	o.connectionUp()

	if o.buffered() != 0 {
		t.Errorf("failed replays are not re-buffered, got %d", o.buffered())
	}

	// A later publish still goes straight out once sends recover.
	l.err = nil
	if err := o.publish(msgN(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l.sent) != 1 {
		t.Errorf("expected 1 send after recovery, got %d", len(l.sent))
	}
}
