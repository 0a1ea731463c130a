package main

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/formscout/internal/api"
	"github.com/JaimeStill/formscout/internal/config"
	"github.com/JaimeStill/formscout/internal/infrastructure"
	"github.com/JaimeStill/formscout/pkg/database"
	"github.com/JaimeStill/formscout/pkg/handlers"
	"github.com/JaimeStill/formscout/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()
	logger := infra.Logger.With("handler", "health")

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := readiness(infra); err != nil {
			handlers.RespondError(w, logger, http.StatusServiceUnavailable, err)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return router
}

// readiness reports the first subsystem that cannot yet serve detections.
func readiness(infra *infrastructure.Infrastructure) error {
	if !infra.Database.Ready() {
		return database.ErrNotReady
	}
	if !infra.Lifecycle.Ready() {
		return errors.New("startup in progress")
	}
	return nil
}
