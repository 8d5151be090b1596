package flexit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL = "https://api.climatixic.com"
	DefaultTimeout = 10 * time.Second
)

type Options struct {
	BaseURL         string
	Username        string
	Password        string
	SubscriptionKey string

	// PlantID skips plant discovery when set.
	PlantID PlantID
	Timeout time.Duration
	Modes   ModeTable
	Now     func() time.Time
}

// Client talks to the Climatix IC cloud API for one plant.
type Client struct {
	log   *zap.SugaredLogger
	auth  *Auth
	http  *transport
	modes ModeTable
	now   func() time.Time

	// mu serializes writes so that cancel-then-set sequences do not interleave.
	mu      sync.Mutex
	refresh singleflight.Group

	plantMu sync.RWMutex
	plant   PlantID
}

func NewClient(log *zap.SugaredLogger, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Modes.Name == "" {
		opts.Modes = ClimatixModes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")

	base := &headerTransport{
		header: vendorHeader(opts.SubscriptionKey),
		base:   http.DefaultTransport,
	}
	auth := newAuth(log, baseURL, base, opts)

	return &Client{
		log:   log,
		auth:  auth,
		http:  newTransport(log, baseURL, base, auth, opts),
		modes: opts.Modes,
		now:   opts.Now,
		plant: opts.PlantID,
	}
}

func (c *Client) Plant() PlantID {
	c.plantMu.RLock()
	defer c.plantMu.RUnlock()
	return c.plant
}

func (c *Client) SetPlant(plant PlantID) {
	c.plantMu.Lock()
	defer c.plantMu.Unlock()
	c.plant = plant
}

func (c *Client) Modes() ModeTable {
	return c.modes
}

func (c *Client) Auth() *Auth {
	return c.auth
}

func (c *Client) EnsureToken(ctx context.Context) error {
	return c.auth.EnsureToken(ctx)
}

func (c *Client) requirePlant() (PlantID, error) {
	plant := c.Plant()
	if plant == "" {
		return "", fmt.Errorf("%w: no plant selected", ErrSetup)
	}
	return plant, nil
}

// FindPlants lists the plants visible to the account.
func (c *Client) FindPlants(ctx context.Context) ([]Plant, error) {
	if err := c.auth.EnsureToken(ctx); err != nil {
		return nil, err
	}

	body, err := c.http.get(ctx, c.http.plantsURL())
	if err != nil {
		return nil, fmt.Errorf("could not list plants: %w", err)
	}

	var resp plantsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, protocolError("malformed plants response: %v", err)
	}

	return resp.Items, nil
}

// ResolvePlant selects the plant to operate on. A configured plant wins;
// otherwise the account must own at least one.
func (c *Client) ResolvePlant(ctx context.Context) (PlantID, error) {
	if plant := c.Plant(); plant != "" {
		return plant, nil
	}

	plants, err := c.FindPlants(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSetup, err)
	}
	if len(plants) == 0 {
		return "", fmt.Errorf("%w: no devices found on account", ErrSetup)
	}

	ids := make([]string, 0, len(plants))
	for _, p := range plants {
		ids = append(ids, p.ID)
	}
	slices.Sort(ids)

	if len(ids) > 1 {
		c.log.Warnf("Account has %d plants (%s), using %s; set flexit.plant_id to choose", len(ids), strings.Join(ids, ", "), ids[0])
	}

	plant := PlantID(ids[0])
	c.SetPlant(plant)
	c.log.Infof("Using plant %s", plant)

	return plant, nil
}

func (c *Client) fetch(ctx context.Context, attrs []Attribute) (PlantID, []byte, error) {
	plant, err := c.requirePlant()
	if err != nil {
		return "", nil, err
	}
	if err := c.auth.EnsureToken(ctx); err != nil {
		return "", nil, err
	}

	paths := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		paths = append(paths, plant.Path(attr))
	}

	body, err := c.http.get(ctx, c.http.filterURL(paths))
	if err != nil {
		return "", nil, err
	}

	return plant, body, nil
}

// RefreshSnapshot fetches every sensor attribute in one request. Concurrent
// callers share one request and each get their own copy of the result.
func (c *Client) RefreshSnapshot(ctx context.Context) (*Snapshot, error) {
	v, err, _ := c.refresh.Do("snapshot", func() (any, error) {
		plant, body, err := c.fetch(ctx, SensorAttributes)
		if err != nil {
			return nil, err
		}
		snapshot, err := decodeSnapshot(plant, c.modes, body, c.now())
		if err != nil {
			return nil, err
		}
		if !snapshot.VentilationMode.Known() {
			c.log.Warnf("Unmapped ventilation mode for %s: %s", plant, snapshot.VentilationMode)
		}
		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}

	snapshot := *v.(*Snapshot)
	return &snapshot, nil
}

// FetchIdentity fetches the device attributes.
func (c *Client) FetchIdentity(ctx context.Context) (*DeviceIdentity, error) {
	plant, body, err := c.fetch(ctx, DeviceAttributes)
	if err != nil {
		return nil, err
	}
	return decodeIdentity(plant, body)
}

// write puts value to attr. Callers hold c.mu.
func (c *Client) write(ctx context.Context, attr Attribute, value any, patch func(*Snapshot)) (WriteResult, error) {
	plant, err := c.requirePlant()
	if err != nil {
		return WriteResult{}, err
	}
	if err := c.auth.EnsureToken(ctx); err != nil {
		return WriteResult{}, err
	}

	path := plant.Path(attr)
	body, err := c.http.put(ctx, path, formatValue(value))
	if err != nil {
		return WriteResult{}, fmt.Errorf("could not write %s: %w", attr, err)
	}

	ok, err := isSuccess(body, path)
	if err != nil {
		return WriteResult{}, err
	}
	if !ok {
		c.log.Warnf("Write of %v to %s was not confirmed: %s", value, attr, body)
	}

	return WriteResult{Attribute: attr, Path: path, Confirmed: ok, patch: patch}, nil
}

func (c *Client) set(ctx context.Context, attr Attribute, value any, patch func(*Snapshot)) (WriteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.write(ctx, attr, value, patch)
}

func (c *Client) SetHomeTemperature(ctx context.Context, value float64) (WriteResult, error) {
	return c.set(ctx, AttrHomeAirTemperature, value, func(s *Snapshot) {
		s.HomeAirTemperature = value
	})
}

func (c *Client) SetAwayTemperature(ctx context.Context, value float64) (WriteResult, error) {
	return c.set(ctx, AttrAwayAirTemperature, value, func(s *Snapshot) {
		s.AwayAirTemperature = value
	})
}

func (c *Client) SetHeaterState(ctx context.Context, on bool) (WriteResult, error) {
	return c.set(ctx, AttrElectricHeater, on, func(s *Snapshot) {
		s.ElectricHeater = on
	})
}

func (c *Client) SetCalendar(ctx context.Context, on bool) (WriteResult, error) {
	return c.set(ctx, AttrCalendarActive, on, func(s *Snapshot) {
		s.CalendarActive = on
	})
}

func (c *Client) SetFireplaceDuration(ctx context.Context, minutes int) (WriteResult, error) {
	return c.set(ctx, AttrFireplaceDuration, minutes, func(s *Snapshot) {
		s.FireplaceDuration = minutes
	})
}

func (c *Client) SetBoostDuration(ctx context.Context, minutes int) (WriteResult, error) {
	return c.set(ctx, AttrBoostDuration, minutes, func(s *Snapshot) {
		s.BoostDuration = minutes
	})
}

func (c *Client) SetAwayDelay(ctx context.Context, minutes int) (WriteResult, error) {
	return c.set(ctx, AttrAwayDelay, minutes, func(s *Snapshot) {
		s.AwayDelay = minutes
	})
}

// SetMode moves the unit from current to target. A running toggle mode is
// cancelled first. Targets outside WritableModes are rejected without any
// request.
func (c *Client) SetMode(ctx context.Context, current, target VentilationMode) (WriteResult, error) {
	if IsToggle(target) {
		return c.toggle(ctx, current, target, true)
	}

	code, ok := c.modes.Encode(target)
	if !ok {
		c.log.Warnf("Ventilation mode %q can not be set", target)
		return WriteResult{Attribute: AttrVentilationModeWrite}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if res, err := c.cancel(ctx, current, target); err != nil || !res.Confirmed {
		return res, err
	}

	return c.write(ctx, AttrVentilationModeWrite, code, func(s *Snapshot) {
		s.VentilationMode = target
	})
}

func (c *Client) SetFireplace(ctx context.Context, current VentilationMode, on bool) (WriteResult, error) {
	return c.toggle(ctx, current, ModeFireplace, on)
}

func (c *Client) SetBoostTemporary(ctx context.Context, current VentilationMode, on bool) (WriteResult, error) {
	return c.toggle(ctx, current, ModeBoostTemporary, on)
}

// cancel writes the trigger that leaves current, if it is a toggle mode.
// Without anything to cancel it reports a confirmed no-op.
func (c *Client) cancel(ctx context.Context, current, target VentilationMode) (WriteResult, error) {
	attr, ok := CancelAction(current, target)
	if !ok {
		return WriteResult{Confirmed: true}, nil
	}
	return c.write(ctx, attr, triggerValue, nil)
}

// toggle switches a trigger driven mode. Writing the trigger flips the mode,
// so it is only written when the state actually changes.
func (c *Client) toggle(ctx context.Context, current, mode VentilationMode, on bool) (WriteResult, error) {
	trigger := toggles[mode]
	active := current == mode

	if on == active {
		// Nothing to stop counts as a rejection; starting a running mode is a no-op.
		return WriteResult{Attribute: trigger, Confirmed: on}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !on {
		return c.write(ctx, trigger, triggerValue, nil)
	}

	if res, err := c.cancel(ctx, current, mode); err != nil || !res.Confirmed {
		return res, err
	}

	return c.write(ctx, trigger, triggerValue, func(s *Snapshot) {
		s.VentilationMode = mode
	})
}
