// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHello(t *testing.T) {
	tests := []string{
		"near",
		"alice.testnet",
		"a-b_c.d",
		"00",
	}
	for _, test := range tests {
		t.Run(test, func(t *testing.T) {
			require := require.New(t)

			to := MustParseAccountID(test)
			greeting, greeted := NewCounter().Hello(to)
			require.Equal("hello", greeting)
			require.Equal(to, greeted)
			require.Equal(test, greeted.String())
		})
	}
}

func TestHelloIdempotent(t *testing.T) {
	require := require.New(t)

	counter := NewCounter()
	to := MustParseAccountID("alice.testnet")
	greeting, greeted := counter.Hello(to)
	for i := 0; i < 10; i++ {
		nextGreeting, nextGreeted := counter.Hello(to)
		require.Equal(greeting, nextGreeting)
		require.Equal(greeted, nextGreeted)
	}
	require.Equal(NewCounter(), counter)
}

func TestDefaultState(t *testing.T) {
	require := require.New(t)

	var zero Counter
	require.Equal(zero, NewCounter())

	counter := NewCounter()
	counter.Hello(MustParseAccountID("near"))
	require.Equal(NewCounter(), counter)
}

func TestStateRoundTrip(t *testing.T) {
	require := require.New(t)

	stateBytes, err := MarshalState(NewCounter())
	require.NoError(err)
	// Only the codec version is written
	require.Len(stateBytes, 2)

	state, err := UnmarshalState(stateBytes)
	require.NoError(err)
	require.Equal(NewCounter(), state)

	root, err := StateRoot(state)
	require.NoError(err)
	otherRoot, err := StateRoot(NewCounter())
	require.NoError(err)
	require.Equal(root, otherRoot)
}

func TestUnmarshalStateBadBytes(t *testing.T) {
	_, err := UnmarshalState([]byte{0xff})
	require.Error(t, err)
}
