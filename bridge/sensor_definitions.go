package bridge

import (
	"context"
	"math"

	"github.com/victorjacobs/go-flexit/flexit"
)

const (
	unitCelsius = "°C"
	unitMinutes = "min"
	unitHours   = "h"
	unitPercent = "%"
	unitRPM     = "rpm"
)

var sensorDefinitions = [...]*sensorDefinition{
	{
		id:         "outside_air_temperature",
		name:       "Outside air temperature",
		class:      "temperature",
		stateClass: "measurement",
		unit:       unitCelsius,
		get:        func(s *flexit.Snapshot) interface{} { return s.OutsideAirTemperature },
	},
	{
		id:         "supply_air_temperature",
		name:       "Supply air temperature",
		class:      "temperature",
		stateClass: "measurement",
		unit:       unitCelsius,
		get:        func(s *flexit.Snapshot) interface{} { return s.SupplyAirTemperature },
	},
	{
		id:         "exhaust_air_temperature",
		name:       "Exhaust air temperature",
		class:      "temperature",
		stateClass: "measurement",
		unit:       unitCelsius,
		get:        func(s *flexit.Snapshot) interface{} { return s.ExhaustAirTemperature },
	},
	{
		id:         "extract_air_temperature",
		name:       "Extract air temperature",
		class:      "temperature",
		stateClass: "measurement",
		unit:       unitCelsius,
		get:        func(s *flexit.Snapshot) interface{} { return s.ExtractAirTemperature },
	},
	{
		id:         "room_temperature",
		name:       "Room temperature",
		class:      "temperature",
		stateClass: "measurement",
		unit:       unitCelsius,
		get:        func(s *flexit.Snapshot) interface{} { return s.RoomTemperature },
	},
	{
		id:         "supply_fan_speed",
		name:       "Supply fan speed",
		stateClass: "measurement",
		unit:       unitRPM,
		icon:       "mdi:fan",
		get:        func(s *flexit.Snapshot) interface{} { return s.SupplyFanSpeed },
	},
	{
		id:         "supply_fan_control_signal",
		name:       "Supply fan control signal",
		stateClass: "measurement",
		unit:       unitPercent,
		icon:       "mdi:fan",
		get:        func(s *flexit.Snapshot) interface{} { return s.SupplyFanControlSignal },
	},
	{
		id:         "extract_fan_speed",
		name:       "Extract fan speed",
		stateClass: "measurement",
		unit:       unitRPM,
		icon:       "mdi:fan",
		get:        func(s *flexit.Snapshot) interface{} { return s.ExtractFanSpeed },
	},
	{
		id:         "extract_fan_control_signal",
		name:       "Extract fan control signal",
		stateClass: "measurement",
		unit:       unitPercent,
		icon:       "mdi:fan",
		get:        func(s *flexit.Snapshot) interface{} { return s.ExtractFanControlSignal },
	},
	{
		id:         "heat_exchanger_speed",
		name:       "Heat exchanger speed",
		stateClass: "measurement",
		unit:       unitPercent,
		icon:       "mdi:hvac",
		get:        func(s *flexit.Snapshot) interface{} { return s.HeatExchangerSpeed },
	},
	{
		id:         "additional_heater",
		name:       "Additional heater",
		stateClass: "measurement",
		unit:       unitPercent,
		icon:       "mdi:radiator",
		get:        func(s *flexit.Snapshot) interface{} { return s.AdditionalHeater },
	},
	{
		id:         "filter_operating_time",
		name:       "Filter operating time",
		class:      "duration",
		stateClass: "total_increasing",
		unit:       unitHours,
		icon:       "mdi:air-filter",
		get:        func(s *flexit.Snapshot) interface{} { return s.FilterOperatingTime },
	},
	{
		id:       "filter_time_for_exchange",
		name:     "Filter time for exchange",
		class:    "duration",
		unit:     unitHours,
		icon:     "mdi:air-filter",
		category: "diagnostic",
		get:      func(s *flexit.Snapshot) interface{} { return s.FilterTimeForExchange },
	},
	{
		id:    "current_fireplace_duration",
		name:  "Remaining fireplace time",
		class: "duration",
		unit:  unitMinutes,
		icon:  "mdi:fireplace",
		get:   func(s *flexit.Snapshot) interface{} { return s.CurrentFireplaceDuration },
	},
	{
		id:    "current_boost_duration",
		name:  "Remaining boost time",
		class: "duration",
		unit:  unitMinutes,
		icon:  "mdi:fan-plus",
		get:   func(s *flexit.Snapshot) interface{} { return s.CurrentBoostDuration },
	},
	{
		id:       "alarm_code_a",
		name:     "Alarm code A",
		icon:     "mdi:alert",
		category: "diagnostic",
		get:      func(s *flexit.Snapshot) interface{} { return s.AlarmCodeA },
	},
	{
		id:       "alarm_code_b",
		name:     "Alarm code B",
		icon:     "mdi:alert",
		category: "diagnostic",
		get:      func(s *flexit.Snapshot) interface{} { return s.AlarmCodeB },
	},
	{
		id:   "ventilation_mode",
		name: "Ventilation mode",
		icon: "mdi:hvac",
		get:  func(s *flexit.Snapshot) interface{} { return string(s.VentilationMode) },
	},
}

var binarySensorDefinitions = [...]*binarySensorDefinition{
	{
		id:    "dirty_filter",
		name:  "Dirty filter",
		class: "problem",
		get:   func(s *flexit.Snapshot) bool { return s.DirtyFilter },
	},
	{
		id:    "alarm",
		name:  "Alarm",
		class: "problem",
		get:   func(s *flexit.Snapshot) bool { return s.Alarm },
	},
	{
		id:   "calendar_temporary_override",
		name: "Calendar temporary override",
		get:  func(s *flexit.Snapshot) bool { return s.CalendarTemporaryOverride },
	},
	{
		id:    "electric_heater",
		name:  "Electric heater",
		class: "heat",
		get:   func(s *flexit.Snapshot) bool { return s.ElectricHeater },
	},
}

func minutes(v float64) int {
	return int(math.Round(v))
}

var numberDefinitions = [...]*numberDefinition{
	{
		id:    "home_air_temperature",
		name:  "Home temperature",
		class: "temperature",
		unit:  unitCelsius,
		min:   10,
		max:   30,
		step:  0.5,
		get:   func(s *flexit.Snapshot) interface{} { return s.HomeAirTemperature },
		set: func(ctx context.Context, d Device, v float64) (flexit.WriteResult, error) {
			return d.SetHomeTemperature(ctx, v)
		},
	},
	{
		id:    "away_air_temperature",
		name:  "Away temperature",
		class: "temperature",
		unit:  unitCelsius,
		min:   10,
		max:   30,
		step:  0.5,
		get:   func(s *flexit.Snapshot) interface{} { return s.AwayAirTemperature },
		set: func(ctx context.Context, d Device, v float64) (flexit.WriteResult, error) {
			return d.SetAwayTemperature(ctx, v)
		},
	},
	{
		id:   "away_delay",
		name: "Away delay",
		unit: unitMinutes,
		min:  0,
		max:  300,
		step: 1,
		get:  func(s *flexit.Snapshot) interface{} { return s.AwayDelay },
		set: func(ctx context.Context, d Device, v float64) (flexit.WriteResult, error) {
			return d.SetAwayDelay(ctx, minutes(v))
		},
	},
	{
		id:   "boost_duration",
		name: "Boost duration",
		unit: unitMinutes,
		min:  1,
		max:  360,
		step: 1,
		get:  func(s *flexit.Snapshot) interface{} { return s.BoostDuration },
		set: func(ctx context.Context, d Device, v float64) (flexit.WriteResult, error) {
			return d.SetBoostDuration(ctx, minutes(v))
		},
	},
	{
		id:   "fireplace_duration",
		name: "Fireplace duration",
		unit: unitMinutes,
		min:  0,
		max:  360,
		step: 1,
		get:  func(s *flexit.Snapshot) interface{} { return s.FireplaceDuration },
		set: func(ctx context.Context, d Device, v float64) (flexit.WriteResult, error) {
			return d.SetFireplaceDuration(ctx, minutes(v))
		},
	},
}

var switchDefinitions = [...]*switchDefinition{
	{
		id:   "boost_temporary",
		name: "Boost temporary",
		icon: "mdi:fan-plus",
		get:  func(s *flexit.Snapshot) bool { return s.VentilationMode == flexit.ModeBoostTemporary },
		set: func(ctx context.Context, d Device, s *flexit.Snapshot, on bool) (flexit.WriteResult, error) {
			return d.SetBoostTemporary(ctx, s.VentilationMode, on)
		},
	},
	{
		id:   "fireplace",
		name: "Fireplace",
		icon: "mdi:fireplace",
		get:  func(s *flexit.Snapshot) bool { return s.VentilationMode == flexit.ModeFireplace },
		set: func(ctx context.Context, d Device, s *flexit.Snapshot, on bool) (flexit.WriteResult, error) {
			return d.SetFireplace(ctx, s.VentilationMode, on)
		},
	},
	{
		id:   "calendar",
		name: "Calendar",
		icon: "mdi:calendar-clock",
		get:  func(s *flexit.Snapshot) bool { return s.CalendarActive },
		set: func(ctx context.Context, d Device, _ *flexit.Snapshot, on bool) (flexit.WriteResult, error) {
			return d.SetCalendar(ctx, on)
		},
	},
}
