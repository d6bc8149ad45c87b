package claims

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sticqr/internal/links"
)

const recordColumns = "id, identifier, generated_at, claimed, batch_id, status, source_path, sticker_path, redirect_url"

const (
	reasonClaimed        = "QR code claimed successfully"
	reasonAlreadyClaimed = "QR code already claimed"
	reasonNotFound       = "QR code not found"
)

// Store manages QR records and claim events.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to dsn and creates the schema on first use. A postgres://
// URL or key=value DSN selects PostgreSQL; anything else is a SQLite path.
func Open(ctx context.Context, dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	d, err := detectDialect(dsn)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	switch d {
	case dialectPostgres:
		db, err = openPostgres(ctx, dsn)
	default:
		db, err = openSQLite(dsn)
	}
	if err != nil {
		return nil, err
	}

	store := &Store{db: db, dialect: d}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Dialect reports the backing database kind ("sqlite" or "postgres").
func (s *Store) Dialect() string {
	return string(s.dialect)
}

func (s *Store) q(query string) string {
	return s.dialect.rebind(query)
}

// CreateRecord inserts an active, unclaimed record and returns its identifier.
func (s *Store) CreateRecord(ctx context.Context, rec NewRecord) (string, error) {
	identifier := rec.Identifier
	if identifier == "" {
		identifier = uuid.NewString()
	}
	if err := links.CheckIdentifier(identifier); err != nil {
		return "", fmt.Errorf("create qr record: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO qr_codes (identifier, generated_at, claimed, batch_id, status, source_path, sticker_path)
         VALUES (?, ?, FALSE, ?, ?, ?, ?)`),
		identifier,
		time.Now().UTC().Format(time.RFC3339Nano),
		nullableString(rec.BatchID),
		StatusActive,
		nullableString(rec.SourcePath),
		nullableString(rec.StickerPath),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: %s", ErrDuplicateIdentifier, identifier)
		}
		return "", fmt.Errorf("insert qr record: %w", err)
	}
	return identifier, nil
}

// GetRecord fetches a record. It returns nil, nil when the identifier is unknown.
func (s *Store) GetRecord(ctx context.Context, identifier string) (*Record, error) {
	if err := links.CheckIdentifier(identifier); err != nil {
		return nil, fmt.Errorf("get qr record: %w", err)
	}
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+recordColumns+` FROM qr_codes WHERE identifier = ?`), identifier)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get qr record: %w", err)
	}
	return rec, nil
}

// Claim registers phone against identifier. The unclaimed check and the
// update are one conditional statement, and the claim event is written in the
// same transaction. An empty masked value is derived with MaskPhone.
func (s *Store) Claim(ctx context.Context, identifier, phone, masked string) (ClaimResult, error) {
	phone = strings.TrimSpace(phone)
	if err := links.CheckIdentifier(identifier); err != nil {
		return ClaimResult{}, fmt.Errorf("claim: %w", err)
	}
	if phone == "" {
		return ClaimResult{}, errors.New("claim: phone is required")
	}
	if strings.TrimSpace(masked) == "" {
		masked = MaskPhone(phone)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	contact := links.Contact(identifier)
	res, err := tx.ExecContext(ctx,
		s.q(`UPDATE qr_codes SET claimed = TRUE, redirect_url = ? WHERE identifier = ? AND claimed = FALSE`),
		contact, identifier,
	)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("claim qr record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return ClaimResult{}, fmt.Errorf("claim rows affected: %w", err)
	}

	if affected == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, s.q(`SELECT COUNT(1) FROM qr_codes WHERE identifier = ?`), identifier).Scan(&exists)
		if err != nil {
			return ClaimResult{}, fmt.Errorf("classify claim: %w", err)
		}
		if exists == 0 {
			return ClaimResult{Outcome: ClaimNotFound, Reason: reasonNotFound}, nil
		}
		return ClaimResult{Outcome: ClaimAlreadyClaimed, Reason: reasonAlreadyClaimed}, nil
	}

	if _, err := tx.ExecContext(ctx,
		s.q(`INSERT INTO claims (identifier, claimed_at, user_phone, masked_number) VALUES (?, ?, ?, ?)`),
		identifier,
		time.Now().UTC().Format(time.RFC3339Nano),
		phone,
		nullableString(masked),
	); err != nil {
		return ClaimResult{}, fmt.Errorf("insert claim event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, fmt.Errorf("commit claim: %w", err)
	}
	return ClaimResult{Outcome: ClaimSucceeded, Reason: reasonClaimed, RedirectURL: contact}, nil
}

// ResolveRedirect returns where a scan of identifier should land. found is
// false for unknown identifiers.
func (s *Store) ResolveRedirect(ctx context.Context, identifier string) (string, bool, error) {
	if err := links.CheckIdentifier(identifier); err != nil {
		return "", false, fmt.Errorf("resolve redirect: %w", err)
	}
	var (
		claimed  bool
		redirect sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT claimed, redirect_url FROM qr_codes WHERE identifier = ?`), identifier,
	).Scan(&claimed, &redirect)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("resolve redirect: %w", err)
	}
	if claimed && redirect.Valid && redirect.String != "" {
		return redirect.String, true, nil
	}
	return links.Claim(identifier), true, nil
}

// ListByBatch returns every record created under batchID.
func (s *Store) ListByBatch(ctx context.Context, batchID string) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+recordColumns+` FROM qr_codes WHERE batch_id = ? ORDER BY id`), batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list batch: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch: %w", err)
	}
	return records, nil
}

// ClaimEvents returns the claim events recorded for identifier, oldest first.
func (s *Store) ClaimEvents(ctx context.Context, identifier string) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT id, identifier, claimed_at, user_phone, masked_number FROM claims WHERE identifier = ? ORDER BY id`),
		identifier,
	)
	if err != nil {
		return nil, fmt.Errorf("list claim events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			ev         Event
			claimedRaw sql.NullString
			masked     sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.Identifier, &claimedRaw, &ev.UserPhone, &masked); err != nil {
			return nil, fmt.Errorf("scan claim event: %w", err)
		}
		ev.ClaimedAt = parseTimeString(claimedRaw)
		ev.MaskedNumber = masked.String
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claim events: %w", err)
	}
	return events, nil
}

// CountClaimEvents returns how many claim events exist for identifier.
func (s *Store) CountClaimEvents(ctx context.Context, identifier string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		s.q(`SELECT COUNT(1) FROM claims WHERE identifier = ?`), identifier,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count claim events: %w", err)
	}
	return count, nil
}

// Stats aggregates claim progress over all records.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		stats   Stats
		claimed sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1),
            SUM(CASE WHEN claimed THEN 1 ELSE 0 END),
            COUNT(DISTINCT batch_id)
         FROM qr_codes`).Scan(&stats.Total, &claimed, &stats.Batches)
	if err != nil {
		return Stats{}, fmt.Errorf("claim stats: %w", err)
	}
	stats.Claimed = int(claimed.Int64)
	stats.Unclaimed = stats.Total - stats.Claimed
	return stats, nil
}

// ListBatches summarises each batch, newest first.
func (s *Store) ListBatches(ctx context.Context) ([]BatchSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT batch_id, COUNT(1),
            SUM(CASE WHEN claimed THEN 1 ELSE 0 END),
            MIN(generated_at)
         FROM qr_codes
         WHERE batch_id IS NOT NULL
         GROUP BY batch_id
         ORDER BY MIN(generated_at) DESC, batch_id`)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []BatchSummary
	for rows.Next() {
		var (
			summary   BatchSummary
			claimed   sql.NullInt64
			generated sql.NullString
		)
		if err := rows.Scan(&summary.BatchID, &summary.Total, &claimed, &generated); err != nil {
			return nil, fmt.Errorf("scan batch summary: %w", err)
		}
		summary.Claimed = int(claimed.Int64)
		summary.GeneratedAt = parseTimeString(generated)
		batches = append(batches, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}
