package flexit

import (
	"strings"
	"testing"
)

func TestDecodeMode(t *testing.T) {
	tests := []struct {
		table ModeTable
		code  int
		want  VentilationMode
	}{
		{ClimatixModes, 0, ModeNull},
		{ClimatixModes, 1, ModeOff},
		{ClimatixModes, 2, ModeAway},
		{ClimatixModes, 3, ModeHome},
		{ClimatixModes, 4, ModeHigh},
		{ClimatixModes, 5, ModeCookerHood},
		{ClimatixModes, 6, ModeFireplace},
		{ClimatixModes, 7, ModeBoostTemporary},
		{LegacyModes, 0, ModeHome},
		{LegacyModes, 4, ModeHigh},
	}

	for _, tt := range tests {
		if got := tt.table.Decode(tt.code); got != tt.want {
			t.Errorf("%s.Decode(%d) = %q, want %q", tt.table.Name, tt.code, got, tt.want)
		}
	}
}

func TestDecodeUnknownMode(t *testing.T) {
	got := ClimatixModes.Decode(99)
	if !strings.Contains(string(got), "99") {
		t.Errorf("Decode(99) = %q, want diagnostic containing the code", got)
	}
	for _, mode := range WritableModes {
		if got == mode {
			t.Errorf("Decode(99) = %q, a real mode", got)
		}
	}
	if got.Known() {
		t.Errorf("Decode(99) = %q reports known", got)
	}
	if !ClimatixModes.Decode(3).Known() {
		t.Error("Home reports unknown")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, table := range []ModeTable{ClimatixModes, LegacyModes} {
		for _, mode := range WritableModes {
			code, ok := table.Encode(mode)
			if IsToggle(mode) {
				if ok {
					t.Errorf("%s: toggle %q should have no mode code", table.Name, mode)
				}
				continue
			}
			if !ok {
				t.Errorf("%s: %q not encodable", table.Name, mode)
				continue
			}
			if got := table.Decode(code); got != mode {
				t.Errorf("%s: Decode(Encode(%q)) = %q", table.Name, mode, got)
			}
		}
	}
}

func TestEncodeUnwritable(t *testing.T) {
	for _, mode := range []VentilationMode{ModeNull, ModeOff, ModeCookerHood, "Turbo"} {
		if _, ok := ClimatixModes.Encode(mode); ok {
			t.Errorf("Encode(%q) should fail", mode)
		}
	}
}

func TestModeTableByName(t *testing.T) {
	for name, want := range map[string]string{"": "climatix", "climatix": "climatix", "Legacy": "legacy"} {
		table, err := ModeTableByName(name)
		if err != nil || table.Name != want {
			t.Errorf("ModeTableByName(%q) = %q, %v", name, table.Name, err)
		}
	}
	if _, err := ModeTableByName("bacnet"); err == nil {
		t.Error("unknown table should fail")
	}
}

func TestCancelAction(t *testing.T) {
	tests := []struct {
		current, target VentilationMode
		want            Attribute
		ok              bool
	}{
		{ModeFireplace, ModeAway, AttrFireplaceTrigger, true},
		{ModeFireplace, ModeBoostTemporary, AttrFireplaceTrigger, true},
		{ModeBoostTemporary, ModeHome, AttrBoostTemporaryTrigger, true},
		{ModeFireplace, ModeFireplace, "", false},
		{ModeHome, ModeAway, "", false},
		{ModeAway, ModeFireplace, "", false},
	}

	for _, tt := range tests {
		got, ok := CancelAction(tt.current, tt.target)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CancelAction(%q, %q) = %q, %v", tt.current, tt.target, got, ok)
		}
	}
}

func TestPresetOf(t *testing.T) {
	tests := []struct {
		mode     VentilationMode
		calendar bool
		want     Preset
	}{
		{ModeHome, false, PresetHome},
		{ModeAway, false, PresetAway},
		{ModeHigh, false, PresetBoost},
		{ModeCookerHood, false, PresetBoost},
		{ModeFireplace, false, PresetFireplace},
		{ModeBoostTemporary, false, PresetBoostTemporary},
		{ModeHome, true, PresetCalendarHome},
		{ModeAway, true, PresetCalendarAway},
		{ModeHigh, true, PresetCalendarBoost},
		{ModeCookerHood, true, PresetBoost},
		{ModeFireplace, true, PresetFireplace},
		{ModeOff, false, Preset(ModeOff)},
	}

	for _, tt := range tests {
		s := &Snapshot{VentilationMode: tt.mode, CalendarActive: tt.calendar}
		if got := PresetOf(s); got != tt.want {
			t.Errorf("PresetOf(%q, calendar=%v) = %q, want %q", tt.mode, tt.calendar, got, tt.want)
		}
	}
}

func TestPresetMode(t *testing.T) {
	for _, preset := range Presets {
		mode, calendar, ok := PresetMode(preset)
		if !ok {
			t.Errorf("preset %q not writable", preset)
			continue
		}
		if calendar {
			if !strings.HasPrefix(string(preset), "calendar_") {
				t.Errorf("preset %q should not select the calendar", preset)
			}
			continue
		}
		if got := PresetOf(&Snapshot{VentilationMode: mode}); got != preset {
			t.Errorf("PresetOf(PresetMode(%q)) = %q", preset, got)
		}
	}

	if _, _, ok := PresetMode("eco"); ok {
		t.Error("unknown preset should fail")
	}
}
