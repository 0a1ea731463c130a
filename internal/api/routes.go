package api

import (
	"net/http"

	"github.com/JaimeStill/formscout/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	artifacts := newArtifactsHandler(runtime.Workflow.WorkDir, runtime.Logger)

	routes.Register(
		mux,
		domain.Forms.Handler(runtime.MaxUploadSize).Routes(),
		domain.Definitions.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		artifacts.routes(),
	)
}
