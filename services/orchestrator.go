package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/trebortGolin/agnostic-agent-api/directory"
	"github.com/trebortGolin/agnostic-agent-api/protocol"
	"github.com/trebortGolin/agnostic-agent-api/supplier"
)

// SupplierSpec describes one supplier instance to deploy.
type SupplierSpec struct {
	SupplierID string
	Name       string
	Verified   bool
	Quotes     map[string]supplier.Quote
	OfferTTL   time.Duration
}

// OrchestratorConfig contains deployment configuration.
type OrchestratorConfig struct {
	// BasePort is the first port to bind; the directory takes BasePort and
	// supplier i takes BasePort+1+i. Zero means ephemeral ports, which is
	// what tests want.
	BasePort int

	// DirectoryCredential, when set, is required on discovery calls.
	DirectoryCredential string

	// AdminToken guards the directory's registration routes as
	// "user:password". Empty leaves them open.
	AdminToken string

	Suppliers []SupplierSpec
}

// DeployedService is one running service instance.
type DeployedService struct {
	ServiceID string
	// HTTPAddr is the service's reachable base URL.
	HTTPAddr string

	httpServer *http.Server
	listener   net.Listener
}

// Orchestrator deploys a directory plus N suppliers on loopback ports and
// wires them together. It exists for the demo binary and the end-to-end
// tests; production deployments run the cmd/ binaries individually.
type Orchestrator struct {
	config *OrchestratorConfig
	log    *slog.Logger

	directory *DeployedService
	suppliers []*DeployedService
}

// NewOrchestrator creates a deployment orchestrator. The logger may be nil.
func NewOrchestrator(config *OrchestratorConfig, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{config: config, log: log}
}

// Deploy starts the directory and all suppliers, then registers each
// supplier with the directory over its admin API.
func (o *Orchestrator) Deploy() error {
	if err := o.deployDirectory(); err != nil {
		return fmt.Errorf("deploy directory: %w", err)
	}
	for i, spec := range o.config.Suppliers {
		if err := o.deploySupplier(i, spec); err != nil {
			return fmt.Errorf("deploy supplier %s: %w", spec.SupplierID, err)
		}
	}
	if err := o.registerSuppliers(); err != nil {
		return fmt.Errorf("register suppliers: %w", err)
	}

	o.log.Info("deployment complete",
		"directory", o.directory.HTTPAddr,
		"suppliers", len(o.suppliers),
	)
	return nil
}

// DirectoryAddr returns the directory's base URL.
func (o *Orchestrator) DirectoryAddr() string {
	return o.directory.HTTPAddr
}

// SupplierAddrs returns the base URL of every deployed supplier, in
// deployment order.
func (o *Orchestrator) SupplierAddrs() []string {
	addrs := make([]string, len(o.suppliers))
	for i, s := range o.suppliers {
		addrs[i] = s.HTTPAddr
	}
	return addrs
}

func (o *Orchestrator) deployDirectory() error {
	d := directory.New(&directory.Config{
		Credential: o.config.DirectoryCredential,
		AdminToken: o.config.AdminToken,
	}, nil)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	directory.NewHandler(d, o.log).RegisterRoutes(r)

	svc, err := o.startService("directory", o.port(0), r)
	if err != nil {
		return err
	}
	o.directory = svc
	return nil
}

func (o *Orchestrator) deploySupplier(index int, spec SupplierSpec) error {
	// Bind first so the supplier knows the commit endpoint it must
	// advertise in its offers.
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", o.port(1+index)))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	addr := fmt.Sprintf("http://%s", listener.Addr())

	s, err := supplier.New(&supplier.Config{
		SupplierID: spec.SupplierID,
		Name:       spec.Name,
		BaseURL:    addr,
		Quotes:     spec.Quotes,
		OfferTTL:   spec.OfferTTL,
	})
	if err != nil {
		listener.Close()
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	supplier.NewHandler(s, o.log, nil).RegisterRoutes(r)

	svc := o.serve(spec.SupplierID, listener, r)
	o.suppliers = append(o.suppliers, svc)
	return nil
}

// startService binds a port and serves the handler on it.
func (o *Orchestrator) startService(serviceID string, port int, handler http.Handler) (*DeployedService, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	return o.serve(serviceID, listener, handler), nil
}

func (o *Orchestrator) serve(serviceID string, listener net.Listener, handler http.Handler) *DeployedService {
	svc := &DeployedService{
		ServiceID:  serviceID,
		HTTPAddr:   fmt.Sprintf("http://%s", listener.Addr()),
		httpServer: &http.Server{Handler: handler},
		listener:   listener,
	}

	go func() {
		o.log.Info("service started", "service_id", serviceID, "addr", svc.HTTPAddr)
		if err := svc.httpServer.Serve(listener); err != http.ErrServerClosed {
			o.log.Error("service stopped", "service_id", serviceID, "err", err)
		}
	}()
	return svc
}

// registerSuppliers announces every supplier to the directory through the
// admin registration endpoint.
func (o *Orchestrator) registerSuppliers() error {
	for i, spec := range o.config.Suppliers {
		serviceTypes := make([]string, 0, len(spec.Quotes))
		for st := range spec.Quotes {
			serviceTypes = append(serviceTypes, st)
		}
		sort.Strings(serviceTypes)

		info := protocol.SupplierInfo{
			SupplierID:        spec.SupplierID,
			Name:              spec.Name,
			BaseURL:           o.suppliers[i].HTTPAddr,
			SupportedServices: serviceTypes,
			IsVerified:        spec.Verified,
		}
		if err := o.registerSupplier(info); err != nil {
			return fmt.Errorf("register %s: %w", spec.SupplierID, err)
		}
	}
	return nil
}

func (o *Orchestrator) registerSupplier(info protocol.SupplierInfo) error {
	body, err := json.Marshal(info)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, o.directory.HTTPAddr+"/admin/suppliers", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if user, pass, ok := strings.Cut(o.config.AdminToken, ":"); ok {
		req.SetBasicAuth(user, pass)
	} else if o.config.AdminToken != "" {
		req.SetBasicAuth("admin", o.config.AdminToken)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("directory returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

// Shutdown stops all services, suppliers first.
func (o *Orchestrator) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var firstErr error
	all := append(append([]*DeployedService{}, o.suppliers...), o.directory)
	for _, svc := range all {
		if svc == nil {
			continue
		}
		if err := svc.httpServer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (o *Orchestrator) port(offset int) int {
	if o.config.BasePort == 0 {
		return 0
	}
	return o.config.BasePort + offset
}
