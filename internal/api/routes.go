package api

import (
	"net/http"

	"github.com/typevault/typevault/internal/config"
	"github.com/typevault/typevault/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Fonts.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.FontGroups.Handler().Routes(),
	)
}
