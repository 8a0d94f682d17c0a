// Package services provides in-process deployment of a complete ATP
// marketplace: one directory plus any number of suppliers, each on its own
// loopback HTTP listener, registered with the directory over its admin API.
//
// The orchestrator exists for the demo binary and the end-to-end tests.
// Production deployments run each service as its own cmd/ binary instead.
package services
