package directory

import (
	"fmt"
	"strings"

	"github.com/trebortGolin/agnostic-agent-api/protocol"
)

// Config holds the directory's settings.
type Config struct {
	// Credential is the shared secret required on discovery calls.
	// Empty disables discovery authentication.
	Credential string `koanf:"credential"`

	// AdminToken guards registration routes as "user:password" basic
	// auth credentials. Empty leaves the admin routes open, which is
	// only acceptable for local development.
	AdminToken string `koanf:"admin_token"`
}

// Directory is the supplier registry agents query before negotiating.
type Directory struct {
	config *Config
	store  Store
}

// New creates a directory backed by store. A nil store gets a fresh
// in-memory one.
func New(config *Config, store Store) *Directory {
	if config == nil {
		config = &Config{}
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Directory{config: config, store: store}
}

// Register validates and stores a supplier record. Re-registering an
// existing supplierId replaces the record in place.
func (d *Directory) Register(info protocol.SupplierInfo) error {
	if info.SupplierID == "" {
		return &protocol.ValidationError{Field: "supplierId", Msg: "must not be empty"}
	}
	if info.Name == "" {
		return &protocol.ValidationError{Field: "name", Msg: "must not be empty"}
	}
	if !strings.HasPrefix(info.BaseURL, "http://") && !strings.HasPrefix(info.BaseURL, "https://") {
		return &protocol.ValidationError{Field: "baseUrl", Msg: "must be an absolute http(s) URL"}
	}
	if len(info.SupportedServices) == 0 {
		return &protocol.ValidationError{Field: "supportedServices", Msg: "must not be empty"}
	}
	for _, st := range info.SupportedServices {
		if !protocol.KnownServiceType(st) {
			return &protocol.ValidationError{Field: "supportedServices", Msg: fmt.Sprintf("unknown service type %q", st)}
		}
	}
	d.store.Put(info)
	return nil
}

// Unregister removes a supplier record.
func (d *Directory) Unregister(supplierID string) error {
	if !d.store.Remove(supplierID) {
		return &protocol.NotFoundError{Kind: "supplier", ID: supplierID}
	}
	return nil
}

// Discover returns the suppliers serving serviceType, in registration
// order. The credential is checked before any lookup happens, so an
// unauthenticated caller learns nothing about the registry's contents.
// With requireVerified set, unverified suppliers are filtered out even
// when they serve the requested type.
func (d *Directory) Discover(serviceType string, requireVerified bool, credential string) ([]protocol.SupplierInfo, error) {
	if d.config.Credential != "" {
		if credential == "" {
			return nil, &protocol.AuthError{Missing: true, Msg: "discovery credential required"}
		}
		if credential != d.config.Credential {
			return nil, &protocol.AuthError{Msg: "invalid discovery credential"}
		}
	}

	if serviceType == "" {
		return nil, &protocol.ValidationError{Field: "serviceType", Msg: "must not be empty"}
	}

	var matches []protocol.SupplierInfo
	for _, info := range d.store.List() {
		if !info.Supports(serviceType) {
			continue
		}
		if requireVerified && !info.IsVerified {
			continue
		}
		matches = append(matches, info)
	}
	if len(matches) == 0 {
		return nil, &protocol.NotFoundError{Kind: "supplier", ID: serviceType}
	}
	return matches, nil
}
