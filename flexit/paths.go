package flexit

import "fmt"

// Attribute names a value exposed by the unit.
type Attribute string

const (
	AttrVentilationMode           Attribute = "ventilation_mode"
	AttrVentilationModeWrite      Attribute = "ventilation_mode_write"
	AttrOutsideAirTemperature     Attribute = "outside_air_temperature"
	AttrSupplyAirTemperature      Attribute = "supply_air_temperature"
	AttrExtractAirTemperature     Attribute = "extract_air_temperature"
	AttrExhaustAirTemperature     Attribute = "exhaust_air_temperature"
	AttrHomeAirTemperature        Attribute = "home_air_temperature"
	AttrAwayAirTemperature        Attribute = "away_air_temperature"
	AttrRoomTemperature           Attribute = "room_temperature"
	AttrFilterOperatingTime       Attribute = "filter_operating_time"
	AttrFilterTimeForExchange     Attribute = "filter_time_for_exchange"
	AttrElectricHeater            Attribute = "electric_heater"
	AttrAlarmCodeA                Attribute = "alarm_code_a"
	AttrAlarmCodeB                Attribute = "alarm_code_b"
	AttrHeatExchangerSpeed        Attribute = "heat_exchanger_speed"
	AttrSupplyFanSpeed            Attribute = "supply_fan_speed"
	AttrSupplyFanControlSignal    Attribute = "supply_fan_control_signal"
	AttrExtractFanSpeed           Attribute = "extract_fan_speed"
	AttrExtractFanControlSignal   Attribute = "extract_fan_control_signal"
	AttrAdditionalHeater          Attribute = "additional_heater"
	AttrFireplaceDuration         Attribute = "fireplace_duration"
	AttrBoostDuration             Attribute = "boost_duration"
	AttrAwayDelay                 Attribute = "away_delay"
	AttrCurrentFireplaceDuration  Attribute = "current_fireplace_duration"
	AttrCurrentBoostDuration      Attribute = "current_boost_duration"
	AttrCalendarActive            Attribute = "calendar_active"
	AttrCalendarTemporaryOverride Attribute = "calendar_temporary_override"
	AttrFireplaceTrigger          Attribute = "fireplace_trigger"
	AttrBoostTemporaryTrigger     Attribute = "boost_temporary_trigger"

	AttrApplicationSoftwareVersion Attribute = "application_software_version"
	AttrDeviceDescription          Attribute = "device_description"
	AttrModelName                  Attribute = "model_name"
	AttrModelInformation           Attribute = "model_information"
	AttrSerialNumber               Attribute = "serial_number"
	AttrFirmwareRevision           Attribute = "firmware_revision"
	AttrOfflineOnline              Attribute = "offline_online"
	AttrSystemStatus               Attribute = "system_status"
	AttrLastRestartReason          Attribute = "last_restart_reason"
)

// Family tells the decoder how a data point's value is nested in a response.
type Family int

const (
	// FamilySensor values are nested as {"value": {"value": ...}}.
	FamilySensor Family = iota
	// FamilyDevice values are a bare {"value": "..."}.
	FamilyDevice
)

type dataPoint struct {
	suffix string
	family Family
}

// Data point suffixes are appended to the plant id. The layout after "!" is
// BACnet object type (3 hex digits) and instance (6 hex digits).
var catalog = map[Attribute]dataPoint{
	AttrVentilationMode:           {";1!013000169000055", FamilySensor},
	AttrVentilationModeWrite:      {";1!01300002A000055", FamilySensor},
	AttrOutsideAirTemperature:     {";1!000000001000055", FamilySensor},
	AttrSupplyAirTemperature:      {";1!000000004000055", FamilySensor},
	AttrExtractAirTemperature:     {";1!00000003B000055", FamilySensor},
	AttrExhaustAirTemperature:     {";1!00000000B000055", FamilySensor},
	AttrHomeAirTemperature:        {";1!0020007CA000055", FamilySensor},
	AttrAwayAirTemperature:        {";1!0020007C1000055", FamilySensor},
	AttrRoomTemperature:           {";1!00000004B000055", FamilySensor},
	AttrFilterOperatingTime:       {";1!00200011D000055", FamilySensor},
	AttrFilterTimeForExchange:     {";1!00200011E000055", FamilySensor},
	AttrElectricHeater:            {";1!0050001BD000055", FamilySensor},
	AttrAlarmCodeA:                {";1!0020007D3000055", FamilySensor},
	AttrAlarmCodeB:                {";1!0020007D4000055", FamilySensor},
	AttrHeatExchangerSpeed:        {";1!001000000000055", FamilySensor},
	AttrSupplyFanSpeed:            {";1!000000005000055", FamilySensor},
	AttrSupplyFanControlSignal:    {";1!001000003000055", FamilySensor},
	AttrExtractFanSpeed:           {";1!00000000C000055", FamilySensor},
	AttrExtractFanControlSignal:   {";1!001000004000055", FamilySensor},
	AttrAdditionalHeater:          {";1!00100001D000055", FamilySensor},
	AttrFireplaceDuration:         {";1!00200010E000055", FamilySensor},
	AttrBoostDuration:             {";1!002000125000055", FamilySensor},
	AttrAwayDelay:                 {";1!00200013E000055", FamilySensor},
	AttrCurrentFireplaceDuration:  {";1!0020007F6000055", FamilySensor},
	AttrCurrentBoostDuration:      {";1!0020007EF000055", FamilySensor},
	AttrCalendarActive:            {";1!0050007E5000055", FamilySensor},
	AttrCalendarTemporaryOverride: {";1!0050007E8000055", FamilySensor},
	AttrFireplaceTrigger:          {";1!013000168000055", FamilySensor},
	AttrBoostTemporaryTrigger:     {";1!013000165000055", FamilySensor},

	AttrApplicationSoftwareVersion: {";0!0083FFFFF00000C", FamilyDevice},
	AttrDeviceDescription:          {";0!0083FFFFF00001C", FamilyDevice},
	AttrModelName:                  {";0!0083FFFFF000046", FamilyDevice},
	AttrModelInformation:           {";0!0083FFFFF0012DB", FamilyDevice},
	AttrSerialNumber:               {";0!0083FFFFF0013EC", FamilyDevice},
	AttrFirmwareRevision:           {";0!0083FFFFF00002C", FamilyDevice},
	AttrOfflineOnline:              {";0!Online", FamilyDevice},
	AttrSystemStatus:               {";0!0083FFFFF000070", FamilyDevice},
	AttrLastRestartReason:          {";0!0083FFFFF0000C4", FamilyDevice},
}

// SensorAttributes is everything fetched on every poll.
var SensorAttributes = []Attribute{
	AttrVentilationMode,
	AttrOutsideAirTemperature,
	AttrSupplyAirTemperature,
	AttrExtractAirTemperature,
	AttrExhaustAirTemperature,
	AttrHomeAirTemperature,
	AttrAwayAirTemperature,
	AttrRoomTemperature,
	AttrFilterOperatingTime,
	AttrFilterTimeForExchange,
	AttrElectricHeater,
	AttrAlarmCodeA,
	AttrAlarmCodeB,
	AttrHeatExchangerSpeed,
	AttrSupplyFanSpeed,
	AttrSupplyFanControlSignal,
	AttrExtractFanSpeed,
	AttrExtractFanControlSignal,
	AttrAdditionalHeater,
	AttrFireplaceDuration,
	AttrBoostDuration,
	AttrAwayDelay,
	AttrCurrentFireplaceDuration,
	AttrCurrentBoostDuration,
	AttrCalendarActive,
	AttrCalendarTemporaryOverride,
}

// DeviceAttributes is fetched once at setup.
var DeviceAttributes = []Attribute{
	AttrApplicationSoftwareVersion,
	AttrDeviceDescription,
	AttrModelName,
	AttrModelInformation,
	AttrSerialNumber,
	AttrFirmwareRevision,
	AttrOfflineOnline,
	AttrSystemStatus,
	AttrLastRestartReason,
}

func lookup(attr Attribute) dataPoint {
	dp, ok := catalog[attr]
	if !ok {
		panic(fmt.Sprintf("flexit: unknown attribute %q", attr))
	}
	return dp
}

// Suffix returns the vendor path suffix of attr. It panics on attributes
// outside the catalog.
func Suffix(attr Attribute) string {
	return lookup(attr).suffix
}

// FamilyOf returns which response layout attr uses.
func FamilyOf(attr Attribute) Family {
	return lookup(attr).family
}

// PlantID identifies one installation.
type PlantID string

// Path returns the fully qualified data point id of attr for this plant.
func (p PlantID) Path(attr Attribute) string {
	return string(p) + Suffix(attr)
}
