package claims

import (
	"database/sql"
	"strings"
	"time"
	"unicode"
)

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		rec         Record
		generated   sql.NullString
		batchID     sql.NullString
		status      sql.NullString
		sourcePath  sql.NullString
		stickerPath sql.NullString
		redirect    sql.NullString
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.Identifier,
		&generated,
		&rec.Claimed,
		&batchID,
		&status,
		&sourcePath,
		&stickerPath,
		&redirect,
	); err != nil {
		return nil, err
	}
	rec.GeneratedAt = parseTimeString(generated)
	rec.BatchID = batchID.String
	rec.Status = status.String
	rec.SourcePath = sourcePath.String
	rec.StickerPath = stickerPath.String
	rec.RedirectURL = redirect.String
	return &rec, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func parseTimeString(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw.String); err == nil {
		return ts
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", raw.String); err == nil {
		return ts
	}
	return time.Time{}
}

// MaskPhone hides all but the last four digits of phone.
func MaskPhone(phone string) string {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 4 {
		return string(digits)
	}
	return strings.Repeat("*", len(digits)-4) + string(digits[len(digits)-4:])
}
