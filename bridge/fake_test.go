package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/victorjacobs/go-flexit/flexit"
)

// fakeDevice records writes and either confirms or rejects all of them.
type fakeDevice struct {
	mu         sync.Mutex
	snapshot   flexit.Snapshot
	refreshErr error
	tokenErr   error
	refreshes  int
	reject     bool
	calls      []string
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		snapshot: flexit.Snapshot{
			VentilationMode:       flexit.ModeHome,
			HomeAirTemperature:    20,
			AwayAirTemperature:    16,
			RoomTemperature:       21.46,
			OutsideAirTemperature: -3.5,
			SupplyFanSpeed:        1800,
			FilterOperatingTime:   500,
			FilterTimeForExchange: 480,
			DirtyFilter:           true,
			FireplaceDuration:     10,
		},
	}
}

func (f *fakeDevice) record(format string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeDevice) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeDevice) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

func (f *fakeDevice) result(attr flexit.Attribute, patch func(*flexit.Snapshot)) (flexit.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Confirmed writes stick, so a read-back sees them.
	if !f.reject && patch != nil {
		patch(&f.snapshot)
	}
	return flexit.NewWriteResult(attr, !f.reject, patch), nil
}

func (f *fakeDevice) EnsureToken(context.Context) error {
	return f.tokenErr
}

func (f *fakeDevice) ResolvePlant(context.Context) (flexit.PlantID, error) {
	return "P123", nil
}

func (f *fakeDevice) FetchIdentity(context.Context) (*flexit.DeviceIdentity, error) {
	return &flexit.DeviceIdentity{ModelName: "Nordic S3", FirmwareRevision: "2.1", SerialNumber: "800123"}, nil
}

func (f *fakeDevice) RefreshSnapshot(context.Context) (*flexit.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.refreshes++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	s := f.snapshot
	return &s, nil
}

func (f *fakeDevice) SetHomeTemperature(_ context.Context, v float64) (flexit.WriteResult, error) {
	f.record("home_temperature=%v", v)
	return f.result(flexit.AttrHomeAirTemperature, func(s *flexit.Snapshot) { s.HomeAirTemperature = v })
}

func (f *fakeDevice) SetAwayTemperature(_ context.Context, v float64) (flexit.WriteResult, error) {
	f.record("away_temperature=%v", v)
	return f.result(flexit.AttrAwayAirTemperature, func(s *flexit.Snapshot) { s.AwayAirTemperature = v })
}

func (f *fakeDevice) SetHeaterState(_ context.Context, on bool) (flexit.WriteResult, error) {
	f.record("heater=%v", on)
	return f.result(flexit.AttrElectricHeater, func(s *flexit.Snapshot) { s.ElectricHeater = on })
}

func (f *fakeDevice) SetMode(_ context.Context, current, target flexit.VentilationMode) (flexit.WriteResult, error) {
	f.record("mode=%v->%v", current, target)
	if _, ok := flexit.ClimatixModes.Encode(target); !ok && !flexit.IsToggle(target) {
		return flexit.NewWriteResult(flexit.AttrVentilationModeWrite, false, nil), nil
	}
	return f.result(flexit.AttrVentilationModeWrite, func(s *flexit.Snapshot) { s.VentilationMode = target })
}

func (f *fakeDevice) SetFireplace(_ context.Context, current flexit.VentilationMode, on bool) (flexit.WriteResult, error) {
	f.record("fireplace=%v", on)
	return f.result(flexit.AttrFireplaceTrigger, func(s *flexit.Snapshot) {
		if on {
			s.VentilationMode = flexit.ModeFireplace
		}
	})
}

func (f *fakeDevice) SetBoostTemporary(_ context.Context, current flexit.VentilationMode, on bool) (flexit.WriteResult, error) {
	f.record("boost_temporary=%v", on)
	return f.result(flexit.AttrBoostTemporaryTrigger, func(s *flexit.Snapshot) {
		if on {
			s.VentilationMode = flexit.ModeBoostTemporary
		}
	})
}

func (f *fakeDevice) SetCalendar(_ context.Context, on bool) (flexit.WriteResult, error) {
	f.record("calendar=%v", on)
	return f.result(flexit.AttrCalendarActive, func(s *flexit.Snapshot) { s.CalendarActive = on })
}

func (f *fakeDevice) SetFireplaceDuration(_ context.Context, minutes int) (flexit.WriteResult, error) {
	f.record("fireplace_duration=%v", minutes)
	return f.result(flexit.AttrFireplaceDuration, func(s *flexit.Snapshot) { s.FireplaceDuration = minutes })
}

func (f *fakeDevice) SetBoostDuration(_ context.Context, minutes int) (flexit.WriteResult, error) {
	f.record("boost_duration=%v", minutes)
	return f.result(flexit.AttrBoostDuration, func(s *flexit.Snapshot) { s.BoostDuration = minutes })
}

func (f *fakeDevice) SetAwayDelay(_ context.Context, minutes int) (flexit.WriteResult, error) {
	f.record("away_delay=%v", minutes)
	return f.result(flexit.AttrAwayDelay, func(s *flexit.Snapshot) { s.AwayDelay = minutes })
}
