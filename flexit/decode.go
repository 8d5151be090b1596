package flexit

import (
	"encoding/json"
	"math"
	"time"

	"github.com/spf13/cast"
)

const resultSuccess = "Success"

type valuesResponse struct {
	Values map[string]struct {
		Value json.RawMessage `json:"value"`
	} `json:"values"`
}

type sensorValue struct {
	Value any `json:"value"`
}

type stateResponse struct {
	StateTexts map[string]any `json:"stateTexts"`
}

// decoder reads typed values out of a batch response. The first failure
// sticks; later reads return zero values.
type decoder struct {
	plant PlantID
	resp  valuesResponse
	err   error
}

func newDecoder(plant PlantID, body []byte) (*decoder, error) {
	d := &decoder{plant: plant}
	if err := json.Unmarshal(body, &d.resp); err != nil {
		return nil, protocolError("malformed values response: %v", err)
	}
	if d.resp.Values == nil {
		return nil, protocolError("values response has no values")
	}
	return d, nil
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *decoder) value(attr Attribute) any {
	if d.err != nil {
		return nil
	}

	path := d.plant.Path(attr)
	entry, ok := d.resp.Values[path]
	if !ok {
		d.fail(protocolError("missing data point %s (%s)", attr, path))
		return nil
	}

	var v any
	switch FamilyOf(attr) {
	case FamilyDevice:
		if err := json.Unmarshal(entry.Value, &v); err != nil {
			d.fail(protocolError("malformed value for %s: %v", attr, err))
			return nil
		}
	default:
		var nested sensorValue
		if err := json.Unmarshal(entry.Value, &nested); err != nil {
			d.fail(protocolError("malformed value for %s: %v", attr, err))
			return nil
		}
		v = nested.Value
	}

	if v == nil {
		d.fail(protocolError("empty value for %s", attr))
	}
	return v
}

func (d *decoder) text(attr Attribute) string {
	v := d.value(attr)
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		d.fail(protocolError("%s is not a string: %v", attr, err))
	}
	return s
}

func (d *decoder) integer(attr Attribute) int {
	v := d.value(attr)
	if v == nil {
		return 0
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		d.fail(protocolError("%s is not an integer: %v", attr, err))
	}
	return i
}

func (d *decoder) number(attr Attribute) float64 {
	v := d.value(attr)
	if v == nil {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		d.fail(protocolError("%s is not a number: %v", attr, err))
	}
	return round2(f)
}

func (d *decoder) flag(attr Attribute) bool {
	return d.integer(attr) == 1
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// IsFilterDirty reports whether the filter has run past its exchange interval.
func IsFilterDirty(operatingTime, exchangeInterval int) bool {
	return operatingTime >= exchangeInterval
}

func decodeSnapshot(plant PlantID, modes ModeTable, body []byte, now time.Time) (*Snapshot, error) {
	d, err := newDecoder(plant, body)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		OutsideAirTemperature: d.number(AttrOutsideAirTemperature),
		SupplyAirTemperature:  d.number(AttrSupplyAirTemperature),
		ExhaustAirTemperature: d.number(AttrExhaustAirTemperature),
		ExtractAirTemperature: d.number(AttrExtractAirTemperature),
		HomeAirTemperature:    d.number(AttrHomeAirTemperature),
		AwayAirTemperature:    d.number(AttrAwayAirTemperature),
		RoomTemperature:       d.number(AttrRoomTemperature),

		VentilationMode: modes.Decode(d.integer(AttrVentilationMode)),
		ElectricHeater:  d.flag(AttrElectricHeater),

		FilterOperatingTime:   d.integer(AttrFilterOperatingTime),
		FilterTimeForExchange: d.integer(AttrFilterTimeForExchange),

		AlarmCodeA: d.integer(AttrAlarmCodeA),
		AlarmCodeB: d.integer(AttrAlarmCodeB),

		HeatExchangerSpeed:      d.integer(AttrHeatExchangerSpeed),
		SupplyFanSpeed:          d.integer(AttrSupplyFanSpeed),
		SupplyFanControlSignal:  d.integer(AttrSupplyFanControlSignal),
		ExtractFanSpeed:         d.integer(AttrExtractFanSpeed),
		ExtractFanControlSignal: d.integer(AttrExtractFanControlSignal),
		AdditionalHeater:        d.integer(AttrAdditionalHeater),

		FireplaceDuration:        d.integer(AttrFireplaceDuration),
		BoostDuration:            d.integer(AttrBoostDuration),
		AwayDelay:                d.integer(AttrAwayDelay),
		CurrentFireplaceDuration: d.integer(AttrCurrentFireplaceDuration),
		CurrentBoostDuration:     d.integer(AttrCurrentBoostDuration),

		CalendarActive:            d.flag(AttrCalendarActive),
		CalendarTemporaryOverride: d.flag(AttrCalendarTemporaryOverride),

		FetchedAt: now,
	}
	if d.err != nil {
		return nil, d.err
	}

	s.DirtyFilter = IsFilterDirty(s.FilterOperatingTime, s.FilterTimeForExchange)
	s.Alarm = s.AlarmCodeA != 0 || s.AlarmCodeB != 0

	return s, nil
}

func decodeIdentity(plant PlantID, body []byte) (*DeviceIdentity, error) {
	d, err := newDecoder(plant, body)
	if err != nil {
		return nil, err
	}

	identity := &DeviceIdentity{
		FirmwareRevision:           d.text(AttrFirmwareRevision),
		ApplicationSoftwareVersion: d.text(AttrApplicationSoftwareVersion),
		DeviceDescription:          d.text(AttrDeviceDescription),
		ModelName:                  d.text(AttrModelName),
		ModelInformation:           d.text(AttrModelInformation),
		SerialNumber:               d.text(AttrSerialNumber),
		Status:                     d.text(AttrOfflineOnline),
		SystemStatus:               d.text(AttrSystemStatus),
		LastRestartReason:          d.integer(AttrLastRestartReason),
	}
	if d.err != nil {
		return nil, d.err
	}

	return identity, nil
}

// isSuccess checks the stateTexts entry for path. A missing entry counts as
// a rejection, a missing map as a malformed response.
func isSuccess(body []byte, path string) (bool, error) {
	var resp stateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, protocolError("malformed write response: %v", err)
	}
	if resp.StateTexts == nil {
		return false, protocolError("write response has no stateTexts")
	}

	text, _ := resp.StateTexts[path].(string)
	return text == resultSuccess, nil
}
