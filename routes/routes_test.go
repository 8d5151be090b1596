package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/victorjacobs/go-flexit/bridge"
	"github.com/victorjacobs/go-flexit/flexit"
	"go.uber.org/zap"
)

type staticState bridge.State

func (s staticState) State() bridge.State {
	return bridge.State(s)
}

func serve(t *testing.T, path string, handle httprouter.Handle) *http.Response {
	t.Helper()

	router := httprouter.New()
	router.GET(path, handle)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Result()
}

func TestState(t *testing.T) {
	state := staticState{
		Plant:    "P123",
		Identity: &flexit.DeviceIdentity{ModelName: "Nordic S3"},
		Snapshot: &flexit.Snapshot{VentilationMode: flexit.ModeHome, RoomTemperature: 21.46},
		Preset:   flexit.PresetHome,
		Status:   bridge.Status{Available: true, LastSuccess: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	}

	resp := serve(t, "/state", State(zap.NewNop().Sugar(), state))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var body struct {
		Plant    string `json:"plant_id"`
		Preset   string `json:"preset"`
		Snapshot struct {
			VentilationMode string  `json:"ventilation_mode"`
			RoomTemperature float64 `json:"room_temperature"`
		} `json:"snapshot"`
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Plant != "P123" || body.Preset != "home" || !body.Available {
		t.Errorf("body = %+v", body)
	}
	if body.Snapshot.VentilationMode != "Home" || body.Snapshot.RoomTemperature != 21.46 {
		t.Errorf("snapshot = %+v", body.Snapshot)
	}
}

func TestStateWithoutSnapshot(t *testing.T) {
	state := staticState{Status: bridge.Status{LastError: "connection failed"}}

	resp := serve(t, "/state", State(zap.NewNop().Sugar(), state))
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "flexit_test_total", Help: "Test counter."})
	reg.MustRegister(counter)
	counter.Add(3)

	resp := serve(t, "/metrics", Metrics(reg))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "flexit_test_total 3") {
		t.Errorf("body = %s", body)
	}
}
