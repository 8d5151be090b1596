package homeassistant

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	Online  = "online"
	Offline = "offline"

	StateOn  = "ON"
	StateOff = "OFF"
)

var invalidID = regexp.MustCompile(`[^a-z0-9_]+`)

// Client publishes MQTT discovery configs and entity state for one device.
type Client struct {
	log             *zap.SugaredLogger
	mqtt            mqtt.Client
	discoveryPrefix string
	topicPrefix     string
	nodeID          string
	device          *Device
}

func NewClient(log *zap.SugaredLogger, mqtt mqtt.Client, discoveryPrefix, topicPrefix string) *Client {
	return &Client{
		log:             log,
		mqtt:            mqtt,
		discoveryPrefix: discoveryPrefix,
		topicPrefix:     topicPrefix,
		nodeID:          "flexit",
	}
}

// ObjectID lowercases s and replaces anything outside [a-z0-9_].
func ObjectID(s string) string {
	return strings.Trim(invalidID.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

// SetDevice sets the device block attached to every registered entity.
// The first identifier also scopes unique ids.
func (h *Client) SetDevice(device Device) {
	h.device = &device
	if len(device.Identifiers) > 0 {
		h.nodeID = "flexit_" + ObjectID(device.Identifiers[0])
	}
}

// Topic joins parts below the topic prefix.
func (h *Client) Topic(parts ...string) string {
	return strings.Join(append([]string{h.topicPrefix}, parts...), "/")
}

func (h *Client) AvailabilityTopic() string {
	return h.Topic("availability")
}

func (h *Client) configTopic(platform, objectID string) string {
	return fmt.Sprintf("%v/%v/%v/%v/config", h.discoveryPrefix, platform, h.nodeID, objectID)
}

// Register publishes a retained discovery config for objectID.
func (h *Client) Register(objectID string, cfg Config) error {
	e := cfg.entity()
	e.UniqueId = h.nodeID + "_" + objectID
	e.AvailabilityTopic = h.AvailabilityTopic()
	e.Device = h.device

	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not marshal %v config: %w", objectID, err)
	}

	if err := h.publish(h.configTopic(cfg.Platform(), objectID), true, payload); err != nil {
		return err
	}

	h.log.Debugf("Registered %v %v", cfg.Platform(), e.UniqueId)
	return nil
}

// Unregister removes the discovery config for objectID.
func (h *Client) Unregister(platform, objectID string) error {
	return h.publish(h.configTopic(platform, objectID), true, []byte{})
}

// PublishState publishes a retained state value.
func (h *Client) PublishState(topic string, value string) error {
	return h.publish(topic, true, value)
}

func (h *Client) PublishAvailability(online bool) error {
	state := Offline
	if online {
		state = Online
	}
	return h.publish(h.AvailabilityTopic(), true, state)
}

// Subscribe calls handler with the payload of every message on topic.
func (h *Client) Subscribe(topic string, handler func(payload string)) error {
	if t := h.mqtt.Subscribe(topic, 0, func(client mqtt.Client, msg mqtt.Message) {
		handler(string(msg.Payload()))
	}); t.Wait() && t.Error() != nil {
		return fmt.Errorf("could not subscribe to %v: %w", topic, t.Error())
	}
	return nil
}

func (h *Client) publish(topic string, retained bool, payload interface{}) error {
	if t := h.mqtt.Publish(topic, 1, retained, payload); t.Wait() && t.Error() != nil {
		return fmt.Errorf("could not publish to %v: %w", topic, t.Error())
	}
	return nil
}
