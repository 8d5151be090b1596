package homeassistant

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/victorjacobs/go-flexit/internal/mqtttest"
	"go.uber.org/zap"
)

func newTestClient() (*Client, *mqtttest.Client) {
	fake := mqtttest.NewClient()
	return NewClient(zap.NewNop().Sugar(), fake, "homeassistant", "flexit"), fake
}

func TestObjectID(t *testing.T) {
	tests := map[string]string{
		"Outside Air Temperature": "outside_air_temperature",
		"P123;1!0020007CA000055":  "p123_1_0020007ca000055",
		"  Boost (temporary) ":    "boost_temporary",
	}
	for in, want := range tests {
		if got := ObjectID(in); got != want {
			t.Errorf("ObjectID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegister(t *testing.T) {
	h, fake := newTestClient()
	h.SetDevice(Device{
		Identifiers:  []string{"P123"},
		Name:         "Flexit",
		Manufacturer: "Flexit",
		Model:        "Nordic S3",
		SwVersion:    "1.2.3",
	})

	err := h.Register("away_delay", &NumberConfig{
		Entity:       Entity{Name: "Away delay"},
		StateTopic:   h.Topic("away_delay"),
		CommandTopic: h.Topic("away_delay", "set"),
		Min:          Float(0),
		Max:          Float(300),
		Step:         1,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	topic := "homeassistant/number/flexit_p123/away_delay/config"
	payload, ok := fake.Last(topic)
	if !ok {
		t.Fatalf("nothing published to %s", topic)
	}
	if !fake.Retained(topic) {
		t.Error("discovery config should be retained")
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(payload), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got["unique_id"] != "flexit_p123_away_delay" {
		t.Errorf("unique_id = %v", got["unique_id"])
	}
	if got["availability_topic"] != "flexit/availability" {
		t.Errorf("availability_topic = %v", got["availability_topic"])
	}
	if got["command_topic"] != "flexit/away_delay/set" {
		t.Errorf("command_topic = %v", got["command_topic"])
	}
	// A zero minimum must still be sent; Home Assistant defaults to 1.
	if got["min"] != 0.0 || got["max"] != 300.0 {
		t.Errorf("min/max = %v/%v", got["min"], got["max"])
	}

	device, _ := got["device"].(map[string]any)
	if device["model"] != "Nordic S3" || device["sw_version"] != "1.2.3" {
		t.Errorf("device = %v", device)
	}
}

func TestRegisterPlatforms(t *testing.T) {
	tests := []struct {
		cfg      Config
		platform string
	}{
		{&SensorConfig{}, "sensor"},
		{&BinarySensorConfig{}, "binary_sensor"},
		{&NumberConfig{}, "number"},
		{&SelectConfig{}, "select"},
		{&SwitchConfig{}, "switch"},
		{&ButtonConfig{}, "button"},
		{&ClimateConfig{}, "climate"},
	}

	for _, tt := range tests {
		h, fake := newTestClient()
		if err := h.Register("x", tt.cfg); err != nil {
			t.Fatalf("Register: %v", err)
		}
		if _, ok := fake.Last("homeassistant/" + tt.platform + "/flexit/x/config"); !ok {
			t.Errorf("%T not published as %s", tt.cfg, tt.platform)
		}
	}
}

func TestPublishAvailability(t *testing.T) {
	h, fake := newTestClient()

	if err := h.PublishAvailability(true); err != nil {
		t.Fatal(err)
	}
	if got, _ := fake.Last("flexit/availability"); got != Online {
		t.Errorf("availability = %q", got)
	}

	if err := h.PublishAvailability(false); err != nil {
		t.Fatal(err)
	}
	if got, _ := fake.Last("flexit/availability"); got != Offline {
		t.Errorf("availability = %q", got)
	}
}

func TestSubscribe(t *testing.T) {
	h, fake := newTestClient()

	var got string
	if err := h.Subscribe("flexit/mode/set", func(payload string) { got = payload }); err != nil {
		t.Fatal(err)
	}
	if !fake.Deliver("flexit/mode/set", "Away") {
		t.Fatal("no subscriber")
	}
	if got != "Away" {
		t.Errorf("payload = %q", got)
	}
}

func TestPublishError(t *testing.T) {
	h, fake := newTestClient()
	fake.PublishErr = errors.New("broker gone")

	if err := h.PublishState("flexit/x", "1"); err == nil {
		t.Error("publish error should surface")
	}
}
