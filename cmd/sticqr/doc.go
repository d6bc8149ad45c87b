// Package main hosts the sticqr CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into print runs,
// claim operations, redirect lookups, batch reports, and configuration
// scaffolding. It centralizes configuration resolution, store access, and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
