// Package mqtttest provides an in-memory mqtt.Client for tests.
package mqtttest

import (
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Token struct {
	err error
}

func (t *Token) Wait() bool                     { return true }
func (t *Token) WaitTimeout(time.Duration) bool { return true }
func (t *Token) Error() error                   { return t.err }

func (t *Token) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type Message struct {
	topic    string
	payload  []byte
	retained bool
}

func NewMessage(topic, payload string) *Message {
	return &Message{topic: topic, payload: []byte(payload)}
}

func (m *Message) Duplicate() bool   { return false }
func (m *Message) Qos() byte         { return 0 }
func (m *Message) Retained() bool    { return m.retained }
func (m *Message) Topic() string     { return m.topic }
func (m *Message) MessageID() uint16 { return 0 }
func (m *Message) Payload() []byte   { return m.payload }
func (m *Message) Ack()              {}

// Client records publications and routes Deliver calls to subscribers.
type Client struct {
	mu        sync.Mutex
	published []*Message
	handlers  map[string]mqtt.MessageHandler

	// PublishErr fails every publish when set.
	PublishErr error
}

func NewClient() *Client {
	return &Client{handlers: map[string]mqtt.MessageHandler{}}
}

func (c *Client) IsConnected() bool      { return true }
func (c *Client) IsConnectionOpen() bool { return true }
func (c *Client) Connect() mqtt.Token    { return &Token{} }
func (c *Client) Disconnect(uint)        {}

func (c *Client) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.PublishErr != nil {
		return &Token{err: c.PublishErr}
	}

	var b []byte
	switch p := payload.(type) {
	case []byte:
		b = p
	case string:
		b = []byte(p)
	default:
		return &Token{err: fmt.Errorf("unknown payload type %T", payload)}
	}
	c.published = append(c.published, &Message{topic: topic, payload: b, retained: retained})

	return &Token{}
}

func (c *Client) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	c.AddRoute(topic, callback)
	return &Token{}
}

func (c *Client) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	for topic := range filters {
		c.AddRoute(topic, callback)
	}
	return &Token{}
}

func (c *Client) Unsubscribe(topics ...string) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, topic := range topics {
		delete(c.handlers, topic)
	}
	return &Token{}
}

func (c *Client) AddRoute(topic string, callback mqtt.MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = callback
}

func (c *Client) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

// Deliver invokes the handler subscribed to topic and reports whether
// there was one.
func (c *Client) Deliver(topic, payload string) bool {
	c.mu.Lock()
	handler, ok := c.handlers[topic]
	c.mu.Unlock()

	if !ok {
		return false
	}
	handler(c, NewMessage(topic, payload))
	return true
}

func (c *Client) Subscribed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	topics := make([]string, 0, len(c.handlers))
	for topic := range c.handlers {
		topics = append(topics, topic)
	}
	return topics
}

// Last returns the most recent payload published to topic.
func (c *Client) Last(topic string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.published) - 1; i >= 0; i-- {
		if c.published[i].topic == topic {
			return string(c.published[i].payload), true
		}
	}
	return "", false
}

// Count returns how often topic was published to.
func (c *Client) Count(topic string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, m := range c.published {
		if m.topic == topic {
			n++
		}
	}
	return n
}

// Retained reports whether the last publication on topic was retained.
func (c *Client) Retained(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.published) - 1; i >= 0; i-- {
		if c.published[i].topic == topic {
			return c.published[i].retained
		}
	}
	return false
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = nil
}
