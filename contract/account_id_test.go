// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAccountID(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		expectedErr error
	}{
		{name: "top level", id: "near"},
		{name: "sub account", id: "alice.testnet"},
		{name: "all separators", id: "a-b_c.d"},
		{name: "minimum length", id: "ab"},
		{name: "maximum length", id: strings.Repeat("a", MaxAccountIDLen)},
		{name: "empty", id: "", expectedErr: ErrAccountIDTooShort},
		{name: "single char", id: "a", expectedErr: ErrAccountIDTooShort},
		{name: "too long", id: strings.Repeat("a", MaxAccountIDLen+1), expectedErr: ErrAccountIDTooLong},
		{name: "upper case", id: "Alice", expectedErr: ErrAccountIDInvalidChar},
		{name: "space", id: "alice bob", expectedErr: ErrAccountIDInvalidChar},
		{name: "leading separator", id: ".alice", expectedErr: ErrAccountIDRedundantSeparator},
		{name: "trailing separator", id: "alice.", expectedErr: ErrAccountIDRedundantSeparator},
		{name: "double separator", id: "alice..near", expectedErr: ErrAccountIDRedundantSeparator},
		{name: "mixed double separator", id: "alice-_near", expectedErr: ErrAccountIDRedundantSeparator},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			id, err := ParseAccountID(test.id)
			require.ErrorIs(err, test.expectedErr)
			if test.expectedErr != nil {
				require.True(id.IsEmpty())
				return
			}
			require.Equal(test.id, id.String())
		})
	}
}

func TestMustParseAccountIDPanics(t *testing.T) {
	require.Panics(t, func() {
		MustParseAccountID("NOT VALID")
	})
}

func TestAccountIDJSON(t *testing.T) {
	require := require.New(t)

	args := HelloArgs{}
	require.NoError(json.Unmarshal([]byte(`{"to":"alice.testnet"}`), &args))
	require.Equal(MustParseAccountID("alice.testnet"), args.To)

	b, err := json.Marshal(args)
	require.NoError(err)
	require.JSONEq(`{"to":"alice.testnet"}`, string(b))

	err = json.Unmarshal([]byte(`{"to":"Alice"}`), &args)
	require.ErrorIs(err, ErrAccountIDInvalidChar)
}
