package store

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest prompt name accepted, in characters.
const MaxNameLength = 100

var (
	// ErrNameInvalid is returned when a prompt name is blank or too long.
	ErrNameInvalid = errors.New("prompt name must be 1 to 100 characters")

	// ErrNameTaken is returned when another prompt already uses the name.
	ErrNameTaken = errors.New("prompt name is already taken")
)

// NormalizeName trims name and checks its length. It does NOT check
// uniqueness; that is handled at the database layer via the unique index on
// prompts.name.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n == 0 || n > MaxNameLength {
		return "", fmt.Errorf("%w (got %d)", ErrNameInvalid, n)
	}
	return name, nil
}
