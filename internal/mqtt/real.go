package mqtt

import (
	"fmt"
	"log"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/blinkchain/internal/mode"
)

// RealPublisher publishes to an actual MQTT broker.
// Messages published while the connection is down are buffered and
// replayed on reconnect.
type RealPublisher struct {
	client   paho.Client
	commands chan string
	out      *outbox
}

// NewRealPublisher creates a publisher for the given broker. If the broker is
// not reachable within the connect timeout the client keeps retrying in the
// background and publishes are buffered meanwhile.
func NewRealPublisher(broker, clientID string, bufferSize int) (*RealPublisher, error) {
	p := &RealPublisher{
		commands: make(chan string, 8),
	}
	p.out = newOutbox(bufferSize, p.IsConnected, p.send)

	will, err := FormatSystemPayload(WillEvent(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	// OrderMatters(false) runs handlers on their own goroutines, so
	// onConnect may wait on tokens.
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetOrderMatters(false).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: broker %s not reachable yet, retrying in background", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// onConnect runs on every (re)connection: subscribe to commands and replay
// anything buffered while offline.
func (p *RealPublisher) onConnect(c paho.Client) {
	token := c.Subscribe(TopicCommand, 1, p.handleCommand)
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("mqtt: subscribe %s: timeout", TopicCommand)
	} else if err := token.Error(); err != nil {
		log.Printf("mqtt: subscribe %s: %v", TopicCommand, err)
	}

	p.out.connectionUp()
}

func (p *RealPublisher) handleCommand(_ paho.Client, msg paho.Message) {
	cmd := strings.TrimSpace(string(msg.Payload()))
	if cmd == "" {
		return
	}
	select {
	case p.commands <- cmd:
	default:
		log.Printf("mqtt: command %q dropped, loop busy", cmd)
	}
}

// Commands delivers command payloads received on TopicCommand.
func (p *RealPublisher) Commands() <-chan string {
	return p.commands
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

func (p *RealPublisher) send(topic string, qos byte, retained bool, payload []byte) error {
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish to %s timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Publish sends a mode change event to the MQTT broker.
func (p *RealPublisher) Publish(event mode.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.out.publish(bufferedMsg{topic: TopicEvents, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	return p.out.publish(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
