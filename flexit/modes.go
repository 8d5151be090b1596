package flexit

import (
	"fmt"
	"strings"
)

type VentilationMode string

const (
	ModeNull           VentilationMode = "Null"
	ModeOff            VentilationMode = "Off"
	ModeAway           VentilationMode = "Away"
	ModeHome           VentilationMode = "Home"
	ModeHigh           VentilationMode = "High"
	ModeCookerHood     VentilationMode = "Cooker hood"
	ModeFireplace      VentilationMode = "Fireplace"
	ModeBoostTemporary VentilationMode = "Boost temporary"
)

// WritableModes are the modes SetMode accepts.
var WritableModes = []VentilationMode{ModeHome, ModeAway, ModeHigh, ModeFireplace, ModeBoostTemporary}

// ModeTable holds one generation's integer coding of ventilation modes.
// Generations disagree on codes 0 and 3.
type ModeTable struct {
	Name   string
	decode map[int]VentilationMode
	encode map[VentilationMode]int
}

var (
	// ClimatixModes is the coding used by current firmware.
	ClimatixModes = ModeTable{
		Name: "climatix",
		decode: map[int]VentilationMode{
			0: ModeNull,
			1: ModeOff,
			2: ModeAway,
			3: ModeHome,
			4: ModeHigh,
			5: ModeCookerHood,
			6: ModeFireplace,
			7: ModeBoostTemporary,
		},
		encode: map[VentilationMode]int{ModeAway: 2, ModeHome: 3, ModeHigh: 4},
	}

	// LegacyModes is the coding of the first integration generation.
	LegacyModes = ModeTable{
		Name: "legacy",
		decode: map[int]VentilationMode{
			0: ModeHome,
			1: ModeOff,
			2: ModeAway,
			3: ModeHome,
			4: ModeHigh,
			5: ModeCookerHood,
			6: ModeFireplace,
			7: ModeBoostTemporary,
		},
		encode: map[VentilationMode]int{ModeHome: 0, ModeAway: 2, ModeHigh: 4},
	}
)

// ModeTableByName returns the named table.
func ModeTableByName(name string) (ModeTable, error) {
	switch strings.ToLower(name) {
	case "", ClimatixModes.Name:
		return ClimatixModes, nil
	case LegacyModes.Name:
		return LegacyModes, nil
	}
	return ModeTable{}, fmt.Errorf("unknown mode table %q", name)
}

// Decode never fails: unmapped codes yield a diagnostic label.
func (t ModeTable) Decode(code int) VentilationMode {
	if mode, ok := t.decode[code]; ok {
		return mode
	}
	return VentilationMode(fmt.Sprintf("%s%d", unknownModePrefix, code))
}

const unknownModePrefix = "Unknown mode: "

// Known reports whether m was decoded from a mapped code.
func (m VentilationMode) Known() bool {
	return !strings.HasPrefix(string(m), unknownModePrefix)
}

// Encode returns the value written to the mode data point.
func (t ModeTable) Encode(mode VentilationMode) (int, bool) {
	code, ok := t.encode[mode]
	return code, ok
}

// Toggle modes are switched on and off by writing a trigger data point.
var toggles = map[VentilationMode]Attribute{
	ModeFireplace:      AttrFireplaceTrigger,
	ModeBoostTemporary: AttrBoostTemporaryTrigger,
}

const triggerValue = 2

// IsToggle reports whether mode is entered and left through a trigger.
func IsToggle(mode VentilationMode) bool {
	_, ok := toggles[mode]
	return ok
}

// CancelAction returns the trigger that must be written to leave current
// before target can be written, if any.
func CancelAction(current, target VentilationMode) (Attribute, bool) {
	if current == target {
		return "", false
	}
	attr, ok := toggles[current]
	return attr, ok
}

type Preset string

const (
	PresetHome           Preset = "home"
	PresetAway           Preset = "away"
	PresetBoost          Preset = "boost"
	PresetFireplace      Preset = "fireplace"
	PresetBoostTemporary Preset = "boost_temporary"
	PresetCalendarHome   Preset = "calendar_home"
	PresetCalendarAway   Preset = "calendar_away"
	PresetCalendarBoost  Preset = "calendar_boost"
)

var Presets = []Preset{
	PresetHome,
	PresetAway,
	PresetBoost,
	PresetFireplace,
	PresetBoostTemporary,
	PresetCalendarHome,
	PresetCalendarAway,
	PresetCalendarBoost,
}

// PresetOf maps a snapshot to the preset shown to users.
func PresetOf(s *Snapshot) Preset {
	var preset Preset
	switch s.VentilationMode {
	case ModeHome:
		preset = PresetHome
	case ModeAway:
		preset = PresetAway
	case ModeHigh, ModeCookerHood:
		preset = PresetBoost
	case ModeFireplace:
		return PresetFireplace
	case ModeBoostTemporary:
		return PresetBoostTemporary
	default:
		return Preset(s.VentilationMode)
	}

	if s.CalendarActive && s.VentilationMode != ModeCookerHood {
		return "calendar_" + preset
	}
	return preset
}

// PresetMode is the inverse of PresetOf for writes. Calendar presets
// report calendar as true and carry no mode.
func PresetMode(p Preset) (mode VentilationMode, calendar bool, ok bool) {
	switch p {
	case PresetHome:
		return ModeHome, false, true
	case PresetAway:
		return ModeAway, false, true
	case PresetBoost:
		return ModeHigh, false, true
	case PresetFireplace:
		return ModeFireplace, false, true
	case PresetBoostTemporary:
		return ModeBoostTemporary, false, true
	case PresetCalendarHome, PresetCalendarAway, PresetCalendarBoost:
		return "", true, true
	}
	return "", false, false
}
