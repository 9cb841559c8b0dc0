package handlers

import (
	"errors"
	"net/http"

	"github.com/gunitk/testforge/integration"
	"github.com/gunitk/testforge/issuetracker"
	"github.com/gunitk/testforge/logger"
)

// IntegrationHandler handles issue tracker integration requests.
type IntegrationHandler struct {
	store         integration.Store
	clientFactory issuetracker.ClientFactory
	encryptionKey []byte
	logger        logger.Logger
}

// NewIntegrationHandler creates a new integration handler.
func NewIntegrationHandler(store integration.Store, clientFactory issuetracker.ClientFactory, encryptionKey []byte, log logger.Logger) *IntegrationHandler {
	return &IntegrationHandler{
		store:         store,
		clientFactory: clientFactory,
		encryptionKey: encryptionKey,
		logger:        log,
	}
}

// CreateIntegrationRequest represents the request body for creating an
// integration. Credential keys depend on the provider: github wants token,
// owner and repo; jira wants url, email, api_token and project_key.
type CreateIntegrationRequest struct {
	Name        string                    `json:"name"`
	Provider    issuetracker.ProviderType `json:"provider"`
	Credentials map[string]string         `json:"credentials"`
}

// List handles GET /api/v1/integrations.
func (h *IntegrationHandler) List(w http.ResponseWriter, r *http.Request) {
	integrations, err := h.store.ListIntegrations(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "failed to list integrations", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to list integrations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": integrations,
		"total": len(integrations),
	})
}

// Create handles POST /api/v1/integrations. The credentials are verified
// against the tracker before being stored encrypted.
func (h *IntegrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateIntegrationRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.Provider.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid provider type")
		return
	}
	if len(req.Credentials) == 0 {
		respondError(w, http.StatusBadRequest, "credentials are required")
		return
	}

	client, err := h.clientFactory.NewClient(req.Provider, req.Credentials)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := client.TestConnection(r.Context()); err != nil {
		h.logger.Warn(r.Context(), "integration connection test failed", map[string]interface{}{
			"error":    err.Error(),
			"provider": string(req.Provider),
		})
		respondError(w, http.StatusBadRequest, "failed to connect to tracker: check credentials")
		return
	}

	encrypted, err := integration.EncryptCredentials(h.encryptionKey, req.Credentials)
	if err != nil {
		h.logger.Error(r.Context(), "failed to encrypt credentials", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to encrypt credentials")
		return
	}

	integ := &integration.Integration{
		Name:                 req.Name,
		Provider:             req.Provider,
		EncryptedCredentials: encrypted,
		IsActive:             true,
	}

	if err := h.store.CreateIntegration(r.Context(), integ); err != nil {
		h.logger.Error(r.Context(), "failed to create integration", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to create integration")
		return
	}

	respondJSON(w, http.StatusCreated, integ)
}

// Delete handles DELETE /api/v1/integrations/{integrationID}.
func (h *IntegrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "integrationID", "integration")
	if !ok {
		return
	}

	if err := h.store.DeleteIntegration(r.Context(), id); err != nil {
		if errors.Is(err, integration.ErrIntegrationNotFound) {
			respondError(w, http.StatusNotFound, "integration not found")
			return
		}
		h.logger.Error(r.Context(), "failed to delete integration", map[string]interface{}{
			"error":          err.Error(),
			"integration_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to delete integration")
		return
	}

	respondSuccess(w, "integration deleted")
}
