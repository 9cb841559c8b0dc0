package handlers

import (
	"net/http"

	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/provider"
)

// ProviderHandler handles AI provider listing requests.
type ProviderHandler struct {
	providers *provider.Manager
	logger    logger.Logger
}

// NewProviderHandler creates a new provider handler.
func NewProviderHandler(providers *provider.Manager, log logger.Logger) *ProviderHandler {
	return &ProviderHandler{
		providers: providers,
		logger:    log,
	}
}

// ProvidersResponse represents the provider listing.
type ProvidersResponse struct {
	Providers []provider.Descriptor `json:"providers"`
	Default   string                `json:"default"`
}

// List handles GET /api/v1/providers.
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ProvidersResponse{
		Providers: h.providers.Descriptors(),
		Default:   h.providers.DefaultKey(),
	})
}

// Refresh handles POST /api/v1/providers/refresh. Availability is
// re-evaluated, with live probes when enabled.
func (h *ProviderHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	descriptors := h.providers.Refresh(r.Context())
	respondJSON(w, http.StatusOK, ProvidersResponse{
		Providers: descriptors,
		Default:   h.providers.DefaultKey(),
	})
}
