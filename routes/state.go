package routes

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/victorjacobs/go-flexit/bridge"
	"go.uber.org/zap"
)

type stateSource interface {
	State() bridge.State
}

// State serves the current bridge state as JSON. It answers 503 until the
// first snapshot has been fetched.
func State(log *zap.SugaredLogger, b stateSource) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		state := b.State()

		marshaled, err := json.Marshal(state)
		if err != nil {
			log.Errorf("error marshaling: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if state.Snapshot == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		w.Write(marshaled)
	}
}
