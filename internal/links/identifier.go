package links

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentifier is returned for identifiers that cannot appear in a
// payload URL unchanged.
var ErrInvalidIdentifier = errors.New("invalid qr identifier")

// CheckIdentifier rejects empty identifiers and identifiers with surrounding
// whitespace. Identifiers are never trimmed after this point.
func CheckIdentifier(identifier string) error {
	if identifier == "" {
		return fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}
	if strings.TrimSpace(identifier) != identifier {
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidIdentifier, identifier)
	}
	return nil
}
