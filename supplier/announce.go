package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/trebortGolin/agnostic-agent-api/crypto"
	"github.com/trebortGolin/agnostic-agent-api/protocol"
)

// Info returns this supplier's directory record, with service types in
// sorted order.
func (s *Supplier) Info() protocol.SupplierInfo {
	types := make([]string, 0, len(s.config.Quotes))
	for serviceType := range s.config.Quotes {
		types = append(types, serviceType)
	}
	sort.Strings(types)

	return protocol.SupplierInfo{
		SupplierID:        s.config.SupplierID,
		Name:              s.config.Name,
		BaseURL:           strings.TrimRight(s.config.BaseURL, "/"),
		SupportedServices: types,
	}
}

// Announce self-registers this supplier at the directory. The record is
// wrapped in a signed envelope so the directory can tie the registration to
// the announcing key. Self-registered suppliers enter the directory
// unverified; only the directory's admin surface grants trust.
func (s *Supplier) Announce(ctx context.Context, httpClient *http.Client, directoryURL string, key crypto.PrivateKey) error {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	info := s.Info()
	signed, err := protocol.NewSigned(key, &info)
	if err != nil {
		return fmt.Errorf("sign registration: %w", err)
	}
	body, err := json.Marshal(signed)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}

	u := strings.TrimRight(directoryURL, "/") + "/register"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registration request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("directory refused registration: status %d: %s",
			resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
