// Command demo boots a complete marketplace in one process and runs a
// scripted shopping round against it: a directory, two flight suppliers at
// different price points, and a shopper that books the cheaper one.
//
//	go run ./cmd/demo
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trebortGolin/agnostic-agent-api/client"
	"github.com/trebortGolin/agnostic-agent-api/cmd/common"
	"github.com/trebortGolin/agnostic-agent-api/protocol"
	"github.com/trebortGolin/agnostic-agent-api/services"
	"github.com/trebortGolin/agnostic-agent-api/supplier"
)

func main() {
	log := common.NewLogger(common.LogConfig{Level: "info", Format: "text"})

	orchestrator := services.NewOrchestrator(&services.OrchestratorConfig{
		BasePort: 7900,
		Suppliers: []services.SupplierSpec{
			{
				SupplierID: "sup-airfrance",
				Name:       "Air France Agent",
				Verified:   true,
				Quotes: map[string]supplier.Quote{
					protocol.ServiceFlightBooking: {Price: 480, Currency: "EUR"},
				},
			},
			{
				SupplierID: "sup-lufthansa",
				Name:       "Lufthansa Agent",
				Verified:   true,
				Quotes: map[string]supplier.Quote{
					protocol.ServiceFlightBooking: {Price: 475, Currency: "EUR"},
				},
			},
		},
	}, log)

	if err := orchestrator.Deploy(); err != nil {
		fmt.Fprintf(os.Stderr, "Deployment failed: %v\n", err)
		os.Exit(1)
	}

	if err := runShoppingRound(orchestrator); err != nil {
		fmt.Fprintf(os.Stderr, "Shopping round failed: %v\n", err)
		orchestrator.Shutdown()
		os.Exit(1)
	}

	fmt.Println("\nMarketplace still running:")
	fmt.Printf("  Directory: %s\n", orchestrator.DirectoryAddr())
	for _, addr := range orchestrator.SupplierAddrs() {
		fmt.Printf("  Supplier:  %s\n", addr)
	}
	fmt.Println("\nPress Ctrl+C to shutdown...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	if err := orchestrator.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
	}
	fmt.Println("Marketplace stopped.")
}

func runShoppingRound(orchestrator *services.Orchestrator) error {
	signingKey, err := common.LoadOrGenerateSigningKey("")
	if err != nil {
		return err
	}

	shopper, err := client.New(&client.Config{
		DirectoryURL: orchestrator.DirectoryAddr(),
		RequesterID:  "req-demo",
		SigningKey:   signingKey,
	}, nil, nil)
	if err != nil {
		return err
	}

	maxPrice := 500.0
	intent := protocol.Intent{
		ServiceType: protocol.ServiceFlightBooking,
		Params:      map[string]string{"from": "CDG", "to": "JFK", "date": "2026-10-01"},
		Constraints: protocol.Constraints{MaxPrice: &maxPrice, Currency: "EUR"},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("\nShopping for a CDG -> JFK flight, budget 500 EUR...")
	receipt, err := shopper.Shop(ctx, intent)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n", receipt.Confirmation.Message)
	fmt.Printf("  Winner:       %s at %.2f %s\n",
		receipt.Offer.Supplier.Name, receipt.Offer.Offer.Price, receipt.Offer.Offer.Currency)
	fmt.Printf("  Confirmation: %s\n", receipt.Confirmation.ConfirmationID)
	fmt.Printf("  Signed task:  %d byte payload, %s signature\n",
		len(receipt.SignedTask.Task), receipt.SignedTask.Algorithm)
	return nil
}
