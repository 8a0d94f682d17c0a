// Command shopper runs one shopping round from the command line: discover
// suppliers, negotiate with all of them, commit the cheapest offer and
// print the confirmation.
//
// # Usage
//
//	go run ./cmd/shopper --directory=http://localhost:7900 \
//	    --from=CDG --to=JFK --date=2026-10-01 --max-price=500
//
//	go run ./cmd/shopper --config=shopper.yaml --from=CDG --to=JFK --date=2026-10-01
//
// With --sign-key (or shopper.signing_key in the config) the confirmed
// booking is also printed as a signed task.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/trebortGolin/agnostic-agent-api/client"
	"github.com/trebortGolin/agnostic-agent-api/cmd/common"
	"github.com/trebortGolin/agnostic-agent-api/protocol"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		dirURL     = flag.String("directory", "", "Directory base URL")
		credential = flag.String("credential", "", "Directory discovery credential")
		signKey    = flag.String("sign-key", "", "Hex Ed25519 private key for signing the booking")
		from       = flag.String("from", "", "Origin city or IATA code")
		to         = flag.String("to", "", "Destination city or IATA code")
		date       = flag.String("date", "", "Departure date (YYYY-MM-DD)")
		maxPrice   = flag.Float64("max-price", 0, "Budget constraint (0 means none)")
		currency   = flag.String("currency", "EUR", "Budget currency")
	)
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dirURL != "" {
		cfg.Shopper.DirectoryURL = *dirURL
	}
	if *credential != "" {
		cfg.Shopper.Credential = *credential
	}
	if *signKey != "" {
		cfg.Shopper.SigningKey = *signKey
	}

	if *from == "" || *to == "" || *date == "" {
		fmt.Fprintln(os.Stderr, "Error: --from, --to and --date are required")
		flag.Usage()
		os.Exit(2)
	}

	intent := protocol.Intent{
		ServiceType: protocol.ServiceFlightBooking,
		Params:      map[string]string{"from": *from, "to": *to, "date": *date},
		Constraints: protocol.Constraints{Currency: *currency},
	}
	if *maxPrice > 0 {
		intent.Constraints.MaxPrice = maxPrice
	}

	if err := run(cfg, intent); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *common.Config, intent protocol.Intent) error {
	log := common.NewLogger(cfg.Log)

	clientConfig := &client.Config{
		DirectoryURL:     cfg.Shopper.DirectoryURL,
		RequesterID:      cfg.Shopper.RequesterID,
		Credential:       cfg.Shopper.Credential,
		AllowUnverified:  cfg.Shopper.AllowUnverified,
		NegotiateTimeout: cfg.Shopper.NegotiateTimeout,
	}
	if cfg.Shopper.SigningKey != "" {
		key, err := common.LoadOrGenerateSigningKey(cfg.Shopper.SigningKey)
		if err != nil {
			return fmt.Errorf("load signing key: %w", err)
		}
		clientConfig.SigningKey = key
	}

	shopper, err := client.New(clientConfig, log, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	receipt, err := shopper.Shop(ctx, intent)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", receipt.Confirmation.Message)
	fmt.Printf("  Supplier:     %s\n", receipt.Offer.Supplier.Name)
	fmt.Printf("  Price:        %.2f %s\n", receipt.Offer.Offer.Price, receipt.Offer.Offer.Currency)
	fmt.Printf("  Confirmation: %s\n", receipt.Confirmation.ConfirmationID)

	if receipt.SignedTask != nil {
		raw, err := json.MarshalIndent(receipt.SignedTask, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("\nSigned booking task:\n%s\n", raw)
	}
	return nil
}
