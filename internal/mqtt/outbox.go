package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// sendFunc delivers one message to the broker and waits for the result.
type sendFunc func(topic string, qos byte, retained bool, payload []byte) error

// outbox routes publishes to the broker while connected and into the
// offline ring buffer while not. On every connection after the first it
// announces RECONNECTED and replays the buffer.
type outbox struct {
	connected func() bool
	send      sendFunc
	now       func() time.Time

	mu       sync.Mutex
	buf      *ringBuffer
	connects int
}

func newOutbox(capacity int, connected func() bool, send sendFunc) *outbox {
	return &outbox{
		connected: connected,
		send:      send,
		now:       time.Now,
		buf:       newRingBuffer(capacity),
	}
}

// publish sends msg, or buffers it if the connection is down.
func (o *outbox) publish(msg bufferedMsg) error {
	if !o.connected() {
		o.mu.Lock()
		o.buf.push(msg)
		o.mu.Unlock()
		return nil
	}
	return o.send(msg.topic, msg.qos, msg.retained, msg.payload)
}

// connectionUp runs on each (re)connection. Send failures during replay
// are logged; the remaining messages are still attempted.
func (o *outbox) connectionUp() {
	o.mu.Lock()
	msgs, dropped := o.buf.drainAll()
	reconnect := o.connects > 0
	o.connects++
	o.mu.Unlock()

	if reconnect {
		reason := ""
		if dropped > 0 {
			reason = fmt.Sprintf("DROPPED_%d", dropped)
		}
		payload, err := FormatSystemPayload(SystemEvent{Timestamp: o.now(), Event: "RECONNECTED", Reason: reason})
		if err != nil {
			log.Printf("mqtt: format reconnected payload: %v", err)
		} else if err := o.send(TopicSystem, 1, false, payload); err != nil {
			log.Printf("mqtt: publish reconnected event: %v", err)
		}
		log.Printf("mqtt: reconnected, replaying %d buffered messages", len(msgs))
	}

	failed := 0
	for _, m := range msgs {
		if err := o.send(m.topic, m.qos, m.retained, m.payload); err != nil {
			failed++
			log.Printf("mqtt: replay to %s: %v", m.topic, err)
		}
	}
	if failed > 0 {
		log.Printf("mqtt: %d of %d buffered messages not replayed", failed, len(msgs))
	}
}

// buffered returns the number of messages waiting for a connection.
func (o *outbox) buffered() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.len()
}
