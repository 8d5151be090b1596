package flexit

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type recordedRequest struct {
	Method     string
	Path       string
	RequestURI string
	Header     http.Header
	Body       string
}

// fakeAPI mimics the Climatix IC endpoints used by the client.
type fakeAPI struct {
	t      *testing.T
	server *httptest.Server

	mu          sync.Mutex
	requests    []recordedRequest
	values      map[string]any
	plants      []string
	writeResult string
	tokenStatus int
	valueStatus int
	contentType string
	delay       time.Duration
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{
		t:           t,
		values:      map[string]any{},
		writeResult: resultSuccess,
		tokenStatus: http.StatusOK,
		valueStatus: http.StatusOK,
		contentType: "application/json; charset=utf-8",
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)

	return f
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:     r.Method,
		Path:       r.URL.Path,
		RequestURI: r.RequestURI,
		Header:     r.Header.Clone(),
		Body:       string(body),
	})
	delay := f.delay
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/Token":
		f.writeJSON(w, f.tokenStatus, map[string]any{
			"access_token": "secret-token",
			"token_type":   "bearer",
			"expires_in":   86399,
		})

	case r.Method == http.MethodGet && r.URL.Path == "/Plants":
		f.mu.Lock()
		items := make([]map[string]string, 0, len(f.plants))
		for _, id := range f.plants {
			items = append(items, map[string]string{"id": id})
		}
		f.mu.Unlock()
		f.writeJSON(w, http.StatusOK, map[string]any{"totalCount": len(items), "items": items})

	case r.Method == http.MethodGet && r.URL.Path == "/DataPoints/Values":
		if delay > 0 {
			time.Sleep(delay)
		}

		var filters []struct{ DataPoints string }
		if err := json.Unmarshal([]byte(r.URL.Query().Get("filterId")), &filters); err != nil {
			f.t.Errorf("invalid filterId: %v", err)
		}

		f.mu.Lock()
		values := map[string]any{}
		for _, filter := range filters {
			if v, ok := f.values[filter.DataPoints]; ok {
				values[filter.DataPoints] = v
			}
		}
		status, contentType := f.valueStatus, f.contentType
		f.mu.Unlock()

		if !strings.HasPrefix(contentType, "application/json") {
			w.Header().Set("Content-Type", contentType)
			w.WriteHeader(status)
			io.WriteString(w, "<html>maintenance</html>")
			return
		}
		f.writeJSON(w, status, map[string]any{"values": values})

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/DataPoints/"):
		path := strings.TrimPrefix(r.URL.Path, "/DataPoints/")
		f.mu.Lock()
		result := f.writeResult
		f.mu.Unlock()
		f.writeJSON(w, http.StatusOK, map[string]any{"stateTexts": map[string]string{path: result}})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeAPI) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		f.t.Errorf("encode response: %v", err)
	}
}

func (f *fakeAPI) setSensor(plant PlantID, attr Attribute, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[plant.Path(attr)] = map[string]any{"value": map[string]any{"value": v}}
}

func (f *fakeAPI) setDevice(plant PlantID, attr Attribute, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[plant.Path(attr)] = map[string]any{"value": v}
}

// seed fills every sensor with a plausible idle unit.
func (f *fakeAPI) seed(plant PlantID) {
	for _, attr := range SensorAttributes {
		f.setSensor(plant, attr, 0)
	}
	f.setSensor(plant, AttrVentilationMode, 3)
	f.setSensor(plant, AttrHomeAirTemperature, 20)
	f.setSensor(plant, AttrAwayAirTemperature, 16)
	f.setSensor(plant, AttrFilterTimeForExchange, 4380)

	for _, attr := range DeviceAttributes {
		f.setDevice(plant, attr, "n/a")
	}
	f.setDevice(plant, AttrLastRestartReason, 1)
}

func (f *fakeAPI) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeAPI) count(method, path string) int {
	n := 0
	for _, r := range f.recorded() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) puts() []recordedRequest {
	var puts []recordedRequest
	for _, r := range f.recorded() {
		if r.Method == http.MethodPut {
			puts = append(puts, r)
		}
	}
	return puts
}

func (f *fakeAPI) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

func (f *fakeAPI) client(plant PlantID, mutate ...func(*Options)) *Client {
	opts := Options{
		BaseURL:         f.server.URL,
		Username:        "user@example.com",
		Password:        "hunter2",
		SubscriptionKey: "sub-key",
		PlantID:         plant,
		Timeout:         time.Second,
	}
	for _, m := range mutate {
		m(&opts)
	}
	return NewClient(zap.NewNop().Sugar(), opts)
}
