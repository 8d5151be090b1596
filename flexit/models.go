package flexit

import "time"

// Snapshot is one decoded poll of the unit.
type Snapshot struct {
	OutsideAirTemperature float64 `json:"outside_air_temperature"`
	SupplyAirTemperature  float64 `json:"supply_air_temperature"`
	ExhaustAirTemperature float64 `json:"exhaust_air_temperature"`
	ExtractAirTemperature float64 `json:"extract_air_temperature"`
	HomeAirTemperature    float64 `json:"home_air_temperature"`
	AwayAirTemperature    float64 `json:"away_air_temperature"`
	RoomTemperature       float64 `json:"room_temperature"`

	VentilationMode VentilationMode `json:"ventilation_mode"`
	ElectricHeater  bool            `json:"electric_heater"`

	FilterOperatingTime   int  `json:"filter_operating_time"`
	FilterTimeForExchange int  `json:"filter_time_for_exchange"`
	DirtyFilter           bool `json:"dirty_filter"`

	AlarmCodeA int  `json:"alarm_code_a"`
	AlarmCodeB int  `json:"alarm_code_b"`
	Alarm      bool `json:"alarm"`

	HeatExchangerSpeed      int `json:"heat_exchanger_speed"`
	SupplyFanSpeed          int `json:"supply_fan_speed"`
	SupplyFanControlSignal  int `json:"supply_fan_control_signal"`
	ExtractFanSpeed         int `json:"extract_fan_speed"`
	ExtractFanControlSignal int `json:"extract_fan_control_signal"`
	AdditionalHeater        int `json:"additional_heater"`

	FireplaceDuration        int `json:"fireplace_duration"`
	BoostDuration            int `json:"boost_duration"`
	AwayDelay                int `json:"away_delay"`
	CurrentFireplaceDuration int `json:"current_fireplace_duration"`
	CurrentBoostDuration     int `json:"current_boost_duration"`

	CalendarActive            bool `json:"calendar_active"`
	CalendarTemporaryOverride bool `json:"calendar_temporary_override"`

	FetchedAt time.Time `json:"fetched_at"`
}

// TargetTemperature is the set point for the current mode.
func (s *Snapshot) TargetTemperature() float64 {
	if s.VentilationMode == ModeAway {
		return s.AwayAirTemperature
	}
	return s.HomeAirTemperature
}

type DeviceIdentity struct {
	FirmwareRevision           string `json:"firmware_revision"`
	ApplicationSoftwareVersion string `json:"application_software_version"`
	DeviceDescription          string `json:"device_description"`
	ModelName                  string `json:"model_name"`
	ModelInformation           string `json:"model_information"`
	SerialNumber               string `json:"serial_number"`
	Status                     string `json:"status"`
	SystemStatus               string `json:"system_status"`
	LastRestartReason          int    `json:"last_restart_reason"`
}

type Plant struct {
	ID string `json:"id"`
}

type plantsResponse struct {
	TotalCount int     `json:"totalCount"`
	Items      []Plant `json:"items"`
}

// WriteResult is the outcome of a write. A rejected write is not an error;
// its patch must not be applied.
type WriteResult struct {
	Attribute Attribute
	Path      string
	Confirmed bool

	patch func(*Snapshot)
}

// Apply patches s with the written value if the write was confirmed.
func (r WriteResult) Apply(s *Snapshot) bool {
	if !r.Confirmed || r.patch == nil || s == nil {
		return false
	}
	r.patch(s)
	return true
}

// NewWriteResult builds a result for Device implementations outside this
// package.
func NewWriteResult(attr Attribute, confirmed bool, patch func(*Snapshot)) WriteResult {
	return WriteResult{Attribute: attr, Confirmed: confirmed, patch: patch}
}
