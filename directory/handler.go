package directory

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/trebortGolin/agnostic-agent-api/protocol"
)

// Handler exposes the directory's discovery and registration endpoints.
type Handler struct {
	directory *Directory
	log       *slog.Logger
}

// NewHandler wraps a directory with HTTP endpoints. The logger may be nil.
func NewHandler(d *Directory, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{directory: d, log: log}
}

// RegisterRoutes registers the discovery route and, under /admin, the
// registration routes guarded by basic auth when an admin token is set.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Recoverer)

	r.Get("/discover", h.handleDiscover)
	r.Post("/register", h.handleAnnounce)
	r.Get("/health", h.handleHealth)

	r.Route("/admin", func(r chi.Router) {
		if user, pass, ok := strings.Cut(h.directory.config.AdminToken, ":"); ok {
			r.Use(middleware.BasicAuth("atp-directory", map[string]string{user: pass}))
		} else if h.directory.config.AdminToken != "" {
			r.Use(middleware.BasicAuth("atp-directory", map[string]string{"admin": h.directory.config.AdminToken}))
		}
		r.Post("/suppliers", h.handleRegister)
		r.Delete("/suppliers/{supplierID}", h.handleUnregister)
		r.Get("/suppliers", h.handleList)
	})
}

func (h *Handler) handleDiscover(w http.ResponseWriter, r *http.Request) {
	serviceType := r.URL.Query().Get("serviceType")
	requireVerified := r.URL.Query().Get("requireVerified") != "false"
	credential := r.Header.Get(protocol.HeaderCredential)

	suppliers, err := h.directory.Discover(serviceType, requireVerified, credential)
	if err != nil {
		h.log.Warn("discovery failed", "service_type", serviceType, "err", err)
		writeDirectoryError(w, err)
		return
	}

	h.log.Info("discovered", "service_type", serviceType, "suppliers", len(suppliers))
	writeJSON(w, protocol.DiscoveryResponse{ServiceType: serviceType, Suppliers: suppliers})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	info, err := protocol.DecodeMessage[protocol.SupplierInfo](r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.directory.Register(*info); err != nil {
		writeDirectoryError(w, err)
		return
	}

	h.log.Info("registered supplier", "supplier_id", info.SupplierID, "base_url", info.BaseURL)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, info)
}

// handleAnnounce accepts a supplier's self-registration: a directory record
// wrapped in a signed envelope, tying the registration to the announcing
// key. Self-registered suppliers always enter unverified; trust is granted
// through the admin surface only.
func (h *Handler) handleAnnounce(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	signed, err := protocol.DecodeMessage[protocol.Signed[protocol.SupplierInfo]](r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	info, pubkey, err := signed.Recover()
	if err != nil {
		if claimed := signed.UnsafeObject(); claimed != nil {
			h.log.Warn("announcement signature rejected", "claimed_supplier_id", claimed.SupplierID)
		}
		http.Error(w, "registration signature not valid", http.StatusForbidden)
		return
	}

	info.IsVerified = false
	if err := h.directory.Register(*info); err != nil {
		writeDirectoryError(w, err)
		return
	}

	h.log.Info("supplier announced",
		"supplier_id", info.SupplierID,
		"base_url", info.BaseURL,
		"public_key", pubkey.String(),
	)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, info)
}

func (h *Handler) handleUnregister(w http.ResponseWriter, r *http.Request) {
	supplierID := chi.URLParam(r, "supplierID")
	if err := h.directory.Unregister(supplierID); err != nil {
		writeDirectoryError(w, err)
		return
	}
	h.log.Info("unregistered supplier", "supplier_id", supplierID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.directory.store.List())
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeDirectoryError(w http.ResponseWriter, err error) {
	var authErr *protocol.AuthError
	switch {
	case errors.As(err, &authErr):
		if authErr.Missing {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		} else {
			http.Error(w, err.Error(), http.StatusForbidden)
		}
	case protocol.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case protocol.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
