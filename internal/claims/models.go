package claims

import "time"

// StatusActive is the only status assigned to records today.
const StatusActive = "active"

// Record is one generated QR code.
type Record struct {
	ID          int64
	Identifier  string
	GeneratedAt time.Time
	Claimed     bool
	BatchID     string
	Status      string
	SourcePath  string
	StickerPath string
	RedirectURL string
}

// NewRecord carries the optional fields accepted by CreateRecord. An empty
// Identifier asks the store to generate one.
type NewRecord struct {
	BatchID     string
	SourcePath  string
	StickerPath string
	Identifier  string
}

// Event records an end user registering a phone number against a code.
type Event struct {
	ID           int64
	Identifier   string
	ClaimedAt    time.Time
	UserPhone    string
	MaskedNumber string
}

// ClaimOutcome classifies the result of a claim attempt.
type ClaimOutcome string

const (
	ClaimSucceeded      ClaimOutcome = "claimed"
	ClaimAlreadyClaimed ClaimOutcome = "already_claimed"
	ClaimNotFound       ClaimOutcome = "not_found"
)

// ClaimResult is the business result of Claim. Conflicts are reported here,
// not as errors.
type ClaimResult struct {
	Outcome     ClaimOutcome
	Reason      string
	RedirectURL string
}

// Succeeded reports whether the claim changed the record.
func (r ClaimResult) Succeeded() bool {
	return r.Outcome == ClaimSucceeded
}

// Stats summarises claim progress across every record.
type Stats struct {
	Total     int
	Claimed   int
	Unclaimed int
	Batches   int
}

// BatchSummary describes one batch of generated codes.
type BatchSummary struct {
	BatchID     string
	Total       int
	Claimed     int
	GeneratedAt time.Time
}
