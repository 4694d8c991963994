package handlers

import (
	"despacho_app_go/config"
	"despacho_app_go/services"
	"despacho_app_go/store"

	"github.com/microcosm-cc/bluemonday"
)

// Handlers bundles the collaborators the HTTP surface needs. All state
// lives in the domain store; handlers only translate requests.
type Handlers struct {
	Store    *store.Store
	Sessions *services.SessionService
	Config   *config.Config

	sanitizer *bluemonday.Policy
}

func New(s *store.Store, sessions *services.SessionService, cfg *config.Config) *Handlers {
	return &Handlers{
		Store:     s,
		Sessions:  sessions,
		Config:    cfg,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// sanitize strips any markup from user-supplied text fields
func (h *Handlers) sanitize(value string) string {
	return h.sanitizer.Sanitize(value)
}

func (h *Handlers) sanitizePtr(value *string) *string {
	if value == nil {
		return nil
	}
	clean := h.sanitize(*value)
	return &clean
}
