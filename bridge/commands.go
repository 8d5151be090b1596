package bridge

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/victorjacobs/go-flexit/flexit"
	"github.com/victorjacobs/go-flexit/homeassistant"
)

const (
	climateID        = "climate"
	modeSelectID     = "ventilation_mode_select"
	calendarButtonID = "activate_calendar"

	hvacHeat    = "heat"
	hvacFanOnly = "fan_only"

	commandTimeout = 30 * time.Second
)

func (b *Bridge) commandTopic(parts ...string) string {
	return b.ha.Topic(append(parts, "set")...)
}

func hvacMode(s *flexit.Snapshot) string {
	if s.ElectricHeater {
		return hvacHeat
	}
	return hvacFanOnly
}

func modeOptions() []string {
	options := make([]string, 0, len(flexit.WritableModes))
	for _, mode := range flexit.WritableModes {
		options = append(options, string(mode))
	}
	return options
}

func (b *Bridge) subscribe() error {
	handlers := map[string]func(payload string){
		b.commandTopic(climateID, "temperature"): b.onTargetTemperature,
		b.commandTopic(climateID, "mode"):        b.onHvacMode,
		b.commandTopic(climateID, "preset"):      b.onPreset,
		b.commandTopic(modeSelectID):             b.onVentilationMode,
		b.commandTopic(calendarButtonID):         b.onActivateCalendar,
	}
	for _, def := range numberDefinitions {
		def := def
		handlers[b.commandTopic(def.id)] = func(payload string) { b.onNumber(def, payload) }
	}
	for _, def := range switchDefinitions {
		def := def
		handlers[b.commandTopic(def.id)] = func(payload string) { b.onSwitch(def, payload) }
	}

	for topic, handler := range handlers {
		if err := b.ha.Subscribe(topic, handler); err != nil {
			return err
		}
	}
	return nil
}

// execute runs one write against the current snapshot. A confirmed write is
// applied locally, published, and read back after RefreshDelay.
func (b *Bridge) execute(entity string, write func(ctx context.Context, d Device, s *flexit.Snapshot) (flexit.WriteResult, error)) {
	s := b.coordinator.Snapshot()
	if s == nil {
		b.log.Warnf("Ignoring %v command, no state yet", entity)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	res, err := write(ctx, b.device, s)
	if err != nil {
		b.log.Errorf("Setting %v failed: %v", entity, err)
		b.metrics.Write(entity, resultError)
		return
	}
	if !res.Confirmed {
		b.log.Warnf("Setting %v was rejected", entity)
		b.metrics.Write(entity, resultRejected)
		return
	}

	b.metrics.Write(entity, resultConfirmed)
	b.coordinator.Apply(res)
	b.coordinator.RequestRefresh(context.Background())
}

func (b *Bridge) onTargetTemperature(payload string) {
	value, err := cast.ToFloat64E(strings.TrimSpace(payload))
	if err != nil {
		b.log.Warnf("Invalid temperature %q", payload)
		return
	}

	if s := b.coordinator.Snapshot(); s != nil && s.TargetTemperature() == value {
		b.log.Debugf("Target temperature already %v", value)
		return
	}

	b.execute(climateID, func(ctx context.Context, d Device, s *flexit.Snapshot) (flexit.WriteResult, error) {
		if s.VentilationMode == flexit.ModeAway {
			return d.SetAwayTemperature(ctx, value)
		}
		return d.SetHomeTemperature(ctx, value)
	})
}

func (b *Bridge) onHvacMode(payload string) {
	var on bool
	switch payload {
	case hvacHeat:
		on = true
	case hvacFanOnly:
		on = false
	default:
		b.log.Warnf("Unsupported hvac mode %q", payload)
		return
	}

	b.execute(climateID, func(ctx context.Context, d Device, _ *flexit.Snapshot) (flexit.WriteResult, error) {
		return d.SetHeaterState(ctx, on)
	})
}

func (b *Bridge) onPreset(payload string) {
	mode, calendar, ok := flexit.PresetMode(flexit.Preset(payload))
	if !ok {
		b.log.Warnf("Unsupported preset %q", payload)
		return
	}

	b.execute(climateID, func(ctx context.Context, d Device, s *flexit.Snapshot) (flexit.WriteResult, error) {
		if calendar {
			return d.SetCalendar(ctx, true)
		}
		return d.SetMode(ctx, s.VentilationMode, mode)
	})
}

func (b *Bridge) onVentilationMode(payload string) {
	target := flexit.VentilationMode(payload)

	b.execute(modeSelectID, func(ctx context.Context, d Device, s *flexit.Snapshot) (flexit.WriteResult, error) {
		return d.SetMode(ctx, s.VentilationMode, target)
	})
}

func (b *Bridge) onActivateCalendar(string) {
	b.execute(calendarButtonID, func(ctx context.Context, d Device, _ *flexit.Snapshot) (flexit.WriteResult, error) {
		return d.SetCalendar(ctx, true)
	})
}

func (b *Bridge) onNumber(def *numberDefinition, payload string) {
	value, err := cast.ToFloat64E(strings.TrimSpace(payload))
	if err != nil {
		b.log.Warnf("Invalid value %q for %v", payload, def.id)
		return
	}
	if value < def.min || value > def.max {
		b.log.Warnf("Value %v for %v outside [%v, %v]", value, def.id, def.min, def.max)
		return
	}

	b.execute(def.id, func(ctx context.Context, d Device, _ *flexit.Snapshot) (flexit.WriteResult, error) {
		return def.set(ctx, d, value)
	})
}

func (b *Bridge) onSwitch(def *switchDefinition, payload string) {
	var on bool
	switch strings.ToUpper(payload) {
	case homeassistant.StateOn:
		on = true
	case homeassistant.StateOff:
		on = false
	default:
		b.log.Warnf("Invalid payload %q for %v", payload, def.id)
		return
	}

	b.execute(def.id, func(ctx context.Context, d Device, s *flexit.Snapshot) (flexit.WriteResult, error) {
		return def.set(ctx, d, s, on)
	})
}
