// Package batch produces QR images for many identifiers in parallel.
//
// Identifiers are random UUIDs. A Generator fans the work out over a fixed
// number of workers that share one read-only compositor, and collects one
// Output per identifier in completion order. By default the first failure
// cancels the remaining work; best-effort mode keeps going and reports every
// failure together.
package batch
