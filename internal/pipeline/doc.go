// Package pipeline drives a complete print run: preflight checks, an
// exclusive lock on the output directory, parallel QR and sticker rendering,
// claim records for every code, and the assembled PDF.
//
// Records and PDF pages follow the order identifiers were submitted in, not
// the order workers finished. A run stops at the first unrecovered failure
// unless best-effort mode was requested, in which case the codes that did
// render are recorded and printed and the failures are reported alongside.
package pipeline
