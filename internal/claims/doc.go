// Package claims persists QR records and the claim events that turn a code
// from "unclaimed" into "claimed".
//
// The store runs on SQLite by default and on PostgreSQL when the DSN names a
// server. A record's claimed flag moves from false to true at most once; the
// transition and its claim event are written in one transaction guarded by a
// conditional UPDATE, so concurrent claims on the same identifier cannot both
// succeed. Lookups for unknown identifiers return nil results rather than
// errors.
package claims
