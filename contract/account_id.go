// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"errors"
	"fmt"
)

const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64
)

var (
	ErrAccountIDTooShort           = errors.New("account ID is too short")
	ErrAccountIDTooLong            = errors.New("account ID is too long")
	ErrAccountIDInvalidChar        = errors.New("account ID contains an invalid character")
	ErrAccountIDRedundantSeparator = errors.New("account ID has a redundant separator")
)

// AccountID identifies a principal on the network.
// A non-empty AccountID is always valid: the only way to build one from
// arbitrary input is ParseAccountID.
type AccountID struct {
	id string
}

// ParseAccountID validates [s] and returns it as an AccountID.
//
// Account IDs are 2 to 64 characters of [a-z0-9] separated by single '-',
// '_' or '.' characters. Separators cannot start or end the ID.
func ParseAccountID(s string) (AccountID, error) {
	if err := validateAccountID(s); err != nil {
		return AccountID{}, fmt.Errorf("invalid account ID %q: %w", s, err)
	}
	return AccountID{id: s}, nil
}

// MustParseAccountID is like ParseAccountID but panics on invalid input.
// Only use it with constants.
func MustParseAccountID(s string) AccountID {
	id, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func validateAccountID(s string) error {
	switch {
	case len(s) < MinAccountIDLen:
		return ErrAccountIDTooShort
	case len(s) > MaxAccountIDLen:
		return ErrAccountIDTooLong
	}

	lastWasSeparator := true // a leading separator is redundant
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			lastWasSeparator = false
		case c == '-' || c == '_' || c == '.':
			if lastWasSeparator {
				return ErrAccountIDRedundantSeparator
			}
			lastWasSeparator = true
		default:
			return ErrAccountIDInvalidChar
		}
	}
	if lastWasSeparator {
		return ErrAccountIDRedundantSeparator
	}
	return nil
}

// String returns the account ID as a string
func (a AccountID) String() string { return a.id }

// IsEmpty returns true if [a] is the zero value
func (a AccountID) IsEmpty() bool { return a.id == "" }

// MarshalText implements encoding.TextMarshaler
func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so that account IDs
// arriving over an API are validated before they reach a contract.
func (a *AccountID) UnmarshalText(text []byte) error {
	id, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*a = id
	return nil
}
