// Package cmd provides the CLI commands of the ATP marketplace.
//
// # Commands
//
// directory: The supplier registry with trust-filtered discovery.
//
//	go run ./cmd/directory --addr=:7900 --admin-token=admin:secret
//
// supplier: One supplier agent serving negotiate and commit, priced from a
// YAML quote catalog.
//
//	go run ./cmd/supplier --addr=:7901 --id=sup-1 --name="Supplier One" --catalog=catalog.yaml
//
// shopper: A one-shot shopping round from the command line.
//
//	go run ./cmd/shopper --directory=http://localhost:7900 --from=CDG --to=JFK --date=2026-10-01 --max-price=500
//
// gateway: The conversational front door; turns chat into bookings through
// the Gemini NLU collaborator.
//
//	go run ./cmd/gateway --addr=:8888 --directory=http://localhost:7900
//
// demo: A self-contained marketplace (directory plus two suppliers) with a
// scripted shopping round.
//
//	go run ./cmd/demo
//
// # Configuration
//
// All commands support YAML configuration files via the --config flag and
// ATP_* environment overrides; explicit flags win over both.
package cmd
