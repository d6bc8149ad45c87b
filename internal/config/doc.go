// Package config loads, normalizes, and validates sticqr configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the STICQR_DATABASE environment
// fallback. The Config type centralizes every knob the CLI needs: where
// images, stickers, PDFs and logs go, which template and icon to use, how the
// QR symbol is styled, and where claim records are stored.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
