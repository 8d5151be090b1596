package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cast"
	"github.com/victorjacobs/go-flexit/config"
	"github.com/victorjacobs/go-flexit/flexit"
	"github.com/victorjacobs/go-flexit/homeassistant"
	"go.uber.org/zap"
)

const manufacturer = "Flexit"

type Bridge struct {
	log         *zap.SugaredLogger
	cfg         *config.Configuration
	device      Device
	ha          *homeassistant.Client
	coordinator *Coordinator
	metrics     *Metrics

	mu       sync.RWMutex
	plant    flexit.PlantID
	identity *flexit.DeviceIdentity
}

func New(log *zap.SugaredLogger, cfg *config.Configuration, device Device, mqttClient mqtt.Client, metrics *Metrics) *Bridge {
	b := &Bridge{
		log:     log,
		cfg:     cfg,
		device:  device,
		ha:      homeassistant.NewClient(log, mqttClient, cfg.Mqtt.DiscoveryPrefix, cfg.Mqtt.TopicPrefix),
		metrics: metrics,
	}
	b.coordinator = NewCoordinator(log, device, metrics, b.publish)

	return b
}

func (b *Bridge) Coordinator() *Coordinator {
	return b.coordinator
}

// Setup authenticates, selects the plant, reads the device identity and
// fetches the first snapshot. Any failure is an ErrSetup.
func (b *Bridge) Setup(ctx context.Context) error {
	if err := b.device.EnsureToken(ctx); err != nil {
		return fmt.Errorf("%w: authentication failed: %w", flexit.ErrSetup, err)
	}

	plant, err := b.device.ResolvePlant(ctx)
	if err != nil {
		return err
	}

	identity, err := b.device.FetchIdentity(ctx)
	if err != nil {
		return fmt.Errorf("%w: could not read device info: %w", flexit.ErrSetup, err)
	}

	b.mu.Lock()
	b.plant = plant
	b.identity = identity
	b.mu.Unlock()

	b.log.Infof("Connected to %v %v (serial %v, firmware %v)", identity.ModelName, plant, identity.SerialNumber, identity.FirmwareRevision)

	if err := b.coordinator.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: first refresh failed: %w", flexit.ErrSetup, err)
	}

	return nil
}

func (b *Bridge) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()

	state := State{
		Plant:    b.plant,
		Identity: b.identity,
		Snapshot: b.coordinator.Snapshot(),
		Status:   b.coordinator.Status(),
	}
	if state.Snapshot != nil {
		state.Preset = flexit.PresetOf(state.Snapshot)
	}
	return state
}

func (b *Bridge) deviceInfo() homeassistant.Device {
	b.mu.RLock()
	defer b.mu.RUnlock()

	device := homeassistant.Device{
		Identifiers:  []string{string(b.plant)},
		Name:         b.cfg.Name,
		Manufacturer: manufacturer,
	}
	if b.identity != nil {
		device.Model = b.identity.ModelName
		device.SwVersion = b.identity.FirmwareRevision
		device.SerialNumber = b.identity.SerialNumber
	}
	return device
}

// Register publishes discovery configs for every entity, then the current
// state.
func (b *Bridge) Register() error {
	b.ha.SetDevice(b.deviceInfo())

	if err := b.registerClimate(); err != nil {
		return err
	}

	for _, def := range sensorDefinitions {
		if err := b.ha.Register(def.id, &homeassistant.SensorConfig{
			Entity:            homeassistant.Entity{Name: def.name, Icon: def.icon, EntityCategory: def.category},
			DeviceClass:       def.class,
			StateClass:        def.stateClass,
			StateTopic:        b.ha.Topic(def.id),
			UnitOfMeasurement: def.unit,
		}); err != nil {
			return err
		}
	}

	for _, def := range binarySensorDefinitions {
		if err := b.ha.Register(def.id, &homeassistant.BinarySensorConfig{
			Entity:      homeassistant.Entity{Name: def.name},
			DeviceClass: def.class,
			StateTopic:  b.ha.Topic(def.id),
		}); err != nil {
			return err
		}
	}

	for _, def := range numberDefinitions {
		if err := b.ha.Register(def.id, &homeassistant.NumberConfig{
			Entity:            homeassistant.Entity{Name: def.name, EntityCategory: "config"},
			StateTopic:        b.ha.Topic(def.id),
			CommandTopic:      b.commandTopic(def.id),
			DeviceClass:       def.class,
			UnitOfMeasurement: def.unit,
			Min:               homeassistant.Float(def.min),
			Max:               homeassistant.Float(def.max),
			Step:              def.step,
			Mode:              "box",
		}); err != nil {
			return err
		}
	}

	for _, def := range switchDefinitions {
		if err := b.ha.Register(def.id, &homeassistant.SwitchConfig{
			Entity:       homeassistant.Entity{Name: def.name, Icon: def.icon},
			StateTopic:   b.ha.Topic(def.id),
			CommandTopic: b.commandTopic(def.id),
		}); err != nil {
			return err
		}
	}

	if err := b.ha.Register(modeSelectID, &homeassistant.SelectConfig{
		Entity:       homeassistant.Entity{Name: "Ventilation mode", Icon: "mdi:hvac"},
		StateTopic:   b.ha.Topic(modeSelectID),
		CommandTopic: b.commandTopic(modeSelectID),
		Options:      modeOptions(),
	}); err != nil {
		return err
	}

	if err := b.ha.Register(calendarButtonID, &homeassistant.ButtonConfig{
		Entity:       homeassistant.Entity{Name: "Activate calendar", Icon: "mdi:calendar-check"},
		CommandTopic: b.commandTopic(calendarButtonID),
	}); err != nil {
		return err
	}

	b.log.Infof("Registered entities for %v", b.cfg.Name)

	b.publish(b.coordinator.Snapshot(), b.coordinator.Status())
	return nil
}

func (b *Bridge) registerClimate() error {
	presets := make([]string, 0, len(flexit.Presets))
	for _, p := range flexit.Presets {
		presets = append(presets, string(p))
	}

	return b.ha.Register(climateID, &homeassistant.ClimateConfig{
		Entity:                  homeassistant.Entity{Name: b.cfg.Name},
		CurrentTemperatureTopic: b.ha.Topic(climateID, "current_temperature"),
		TemperatureStateTopic:   b.ha.Topic(climateID, "temperature"),
		TemperatureCommandTopic: b.commandTopic(climateID, "temperature"),
		ModeStateTopic:          b.ha.Topic(climateID, "mode"),
		ModeCommandTopic:        b.commandTopic(climateID, "mode"),
		Modes:                   []string{hvacHeat, hvacFanOnly},
		PresetModeStateTopic:    b.ha.Topic(climateID, "preset"),
		PresetModeCommandTopic:  b.commandTopic(climateID, "preset"),
		PresetModes:             presets,
		MinTemp:                 10,
		MaxTemp:                 30,
		TempStep:                0.5,
		TemperatureUnit:         "C",
		Precision:               0.1,
	})
}

func formatState(v interface{}) string {
	if on, ok := v.(bool); ok {
		if on {
			return homeassistant.StateOn
		}
		return homeassistant.StateOff
	}
	return cast.ToString(v)
}

// publish is the coordinator listener: it pushes availability and every
// entity state.
func (b *Bridge) publish(s *flexit.Snapshot, status Status) {
	if err := b.ha.PublishAvailability(status.Available); err != nil {
		b.log.Warnf("MQTT publishing failed: %v", err)
	}
	if s == nil {
		return
	}

	b.metrics.Observe(s)

	states := map[string]interface{}{
		b.ha.Topic(climateID, "current_temperature"): s.RoomTemperature,
		b.ha.Topic(climateID, "temperature"):         s.TargetTemperature(),
		b.ha.Topic(climateID, "mode"):                hvacMode(s),
		b.ha.Topic(climateID, "preset"):              string(flexit.PresetOf(s)),
		b.ha.Topic(modeSelectID):                     string(s.VentilationMode),
	}
	for _, def := range sensorDefinitions {
		states[b.ha.Topic(def.id)] = def.get(s)
	}
	for _, def := range binarySensorDefinitions {
		states[b.ha.Topic(def.id)] = def.get(s)
	}
	for _, def := range numberDefinitions {
		states[b.ha.Topic(def.id)] = def.get(s)
	}
	for _, def := range switchDefinitions {
		states[b.ha.Topic(def.id)] = def.get(s)
	}

	for topic, value := range states {
		if err := b.ha.PublishState(topic, formatState(value)); err != nil {
			b.log.Warnf("MQTT publishing failed: %v", err)
			return
		}
	}
}

// OnConnect (re)installs command subscriptions and republishes
// availability. It runs on every MQTT (re)connect.
func (b *Bridge) OnConnect() {
	if err := b.subscribe(); err != nil {
		b.log.Errorf("MQTT subscribe failed: %v", err)
	}
	if err := b.ha.PublishAvailability(b.coordinator.Status().Available); err != nil {
		b.log.Warnf("MQTT publishing failed: %v", err)
	}
}

// Run polls until ctx is done.
func (b *Bridge) Run(ctx context.Context, interval time.Duration) {
	b.log.Infof("Polling every %v", interval)
	b.coordinator.Run(ctx, interval)
}

// Shutdown marks all entities unavailable.
func (b *Bridge) Shutdown() {
	if err := b.ha.PublishAvailability(false); err != nil {
		b.log.Warnf("MQTT publishing failed: %v", err)
	}
}
