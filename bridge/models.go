package bridge

import (
	"context"
	"time"

	"github.com/victorjacobs/go-flexit/flexit"
)

// Device is the Flexit API surface the bridge drives. *flexit.Client
// implements it.
type Device interface {
	EnsureToken(ctx context.Context) error
	ResolvePlant(ctx context.Context) (flexit.PlantID, error)
	FetchIdentity(ctx context.Context) (*flexit.DeviceIdentity, error)
	RefreshSnapshot(ctx context.Context) (*flexit.Snapshot, error)

	SetHomeTemperature(ctx context.Context, value float64) (flexit.WriteResult, error)
	SetAwayTemperature(ctx context.Context, value float64) (flexit.WriteResult, error)
	SetHeaterState(ctx context.Context, on bool) (flexit.WriteResult, error)
	SetMode(ctx context.Context, current, target flexit.VentilationMode) (flexit.WriteResult, error)
	SetFireplace(ctx context.Context, current flexit.VentilationMode, on bool) (flexit.WriteResult, error)
	SetBoostTemporary(ctx context.Context, current flexit.VentilationMode, on bool) (flexit.WriteResult, error)
	SetCalendar(ctx context.Context, on bool) (flexit.WriteResult, error)
	SetFireplaceDuration(ctx context.Context, minutes int) (flexit.WriteResult, error)
	SetBoostDuration(ctx context.Context, minutes int) (flexit.WriteResult, error)
	SetAwayDelay(ctx context.Context, minutes int) (flexit.WriteResult, error)
}

var _ Device = (*flexit.Client)(nil)

// Status describes the outcome of the latest poll.
type Status struct {
	Available   bool      `json:"available"`
	LastSuccess time.Time `json:"last_success"`
	LastError   string    `json:"last_error,omitempty"`
}

// State is everything the bridge knows, as served on /state.
type State struct {
	Plant    flexit.PlantID         `json:"plant_id"`
	Identity *flexit.DeviceIdentity `json:"identity"`
	Snapshot *flexit.Snapshot       `json:"snapshot"`
	Preset   flexit.Preset          `json:"preset,omitempty"`
	Status
}

type sensorDefinition struct {
	id         string
	name       string
	class      string
	stateClass string
	unit       string
	icon       string
	category   string
	get        func(s *flexit.Snapshot) interface{}
}

type binarySensorDefinition struct {
	id    string
	name  string
	class string
	get   func(s *flexit.Snapshot) bool
}

type numberDefinition struct {
	id    string
	name  string
	class string
	unit  string
	min   float64
	max   float64
	step  float64
	get   func(s *flexit.Snapshot) interface{}
	set   func(ctx context.Context, d Device, value float64) (flexit.WriteResult, error)
}

type switchDefinition struct {
	id   string
	name string
	icon string
	get  func(s *flexit.Snapshot) bool
	set  func(ctx context.Context, d Device, s *flexit.Snapshot, on bool) (flexit.WriteResult, error)
}
