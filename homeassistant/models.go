package homeassistant

type Device struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Model        string   `json:"model,omitempty"`
	SwVersion    string   `json:"sw_version,omitempty"`
	SerialNumber string   `json:"serial_number,omitempty"`
}

// Entity holds the discovery fields shared by every platform. UniqueId,
// Device and AvailabilityTopic are filled in on registration.
type Entity struct {
	UniqueId          string  `json:"unique_id"`
	Name              string  `json:"name"`
	Icon              string  `json:"icon,omitempty"`
	EntityCategory    string  `json:"entity_category,omitempty"`
	AvailabilityTopic string  `json:"availability_topic,omitempty"`
	Device            *Device `json:"device,omitempty"`
}

func (e *Entity) entity() *Entity {
	return e
}

// Config is a discovery payload for one platform.
type Config interface {
	Platform() string
	entity() *Entity
}

type SensorConfig struct {
	Entity
	DeviceClass       string `json:"device_class,omitempty"`
	StateClass        string `json:"state_class,omitempty"`
	StateTopic        string `json:"state_topic"`
	UnitOfMeasurement string `json:"unit_of_measurement,omitempty"`
}

func (*SensorConfig) Platform() string { return "sensor" }

type BinarySensorConfig struct {
	Entity
	DeviceClass string `json:"device_class,omitempty"`
	StateTopic  string `json:"state_topic"`
}

func (*BinarySensorConfig) Platform() string { return "binary_sensor" }

type NumberConfig struct {
	Entity
	StateTopic        string   `json:"state_topic"`
	CommandTopic      string   `json:"command_topic"`
	DeviceClass       string   `json:"device_class,omitempty"`
	UnitOfMeasurement string   `json:"unit_of_measurement,omitempty"`
	Min               *float64 `json:"min,omitempty"`
	Max               *float64 `json:"max,omitempty"`
	Step              float64  `json:"step,omitempty"`
	Mode              string   `json:"mode,omitempty"`
}

func (*NumberConfig) Platform() string { return "number" }

type SelectConfig struct {
	Entity
	StateTopic   string   `json:"state_topic"`
	CommandTopic string   `json:"command_topic"`
	Options      []string `json:"options"`
}

func (*SelectConfig) Platform() string { return "select" }

type SwitchConfig struct {
	Entity
	StateTopic   string `json:"state_topic"`
	CommandTopic string `json:"command_topic"`
}

func (*SwitchConfig) Platform() string { return "switch" }

type ButtonConfig struct {
	Entity
	CommandTopic string `json:"command_topic"`
}

func (*ButtonConfig) Platform() string { return "button" }

type ClimateConfig struct {
	Entity
	CurrentTemperatureTopic string   `json:"current_temperature_topic"`
	TemperatureStateTopic   string   `json:"temperature_state_topic"`
	TemperatureCommandTopic string   `json:"temperature_command_topic"`
	ModeStateTopic          string   `json:"mode_state_topic"`
	ModeCommandTopic        string   `json:"mode_command_topic"`
	Modes                   []string `json:"modes"`
	PresetModeStateTopic    string   `json:"preset_mode_state_topic"`
	PresetModeCommandTopic  string   `json:"preset_mode_command_topic"`
	PresetModes             []string `json:"preset_modes"`
	MinTemp                 float64  `json:"min_temp"`
	MaxTemp                 float64  `json:"max_temp"`
	TempStep                float64  `json:"temp_step"`
	TemperatureUnit         string   `json:"temperature_unit"`
	Precision               float64  `json:"precision,omitempty"`
}

func (*ClimateConfig) Platform() string { return "climate" }

// Float is a helper for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}
