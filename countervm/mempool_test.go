// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package countervm

import (
	"testing"

	"github.com/ava-labs/avalanchego/snow/engine/common"
	"github.com/stretchr/testify/require"
)

func TestMempoolFIFO(t *testing.T) {
	require := require.New(t)

	toEngine := make(chan common.Message, 1)
	m := newMempool(toEngine, 2)

	require.NoError(m.Add(helloCall("near")))
	require.Equal(common.PendingTxs, <-toEngine)
	require.NoError(m.Add(helloCall("alice.testnet")))
	require.ErrorIs(m.Add(helloCall("bob.testnet")), errMempoolFull)
	require.Equal(2, m.Len())

	call, err := m.Next()
	require.NoError(err)
	require.Equal(helloCall("near"), call)

	call, err = m.Next()
	require.NoError(err)
	require.Equal(helloCall("alice.testnet"), call)

	_, err = m.Next()
	require.ErrorIs(err, errEmptyMempool)
}

func TestMempoolNotifyBuildBlock(t *testing.T) {
	require := require.New(t)

	toEngine := make(chan common.Message, 1)
	m := newMempool(toEngine, 2)

	m.NotifyBuildBlock()
	require.Empty(toEngine)

	require.NoError(m.Add(helloCall("near")))
	<-toEngine
	m.NotifyBuildBlock()
	require.Len(toEngine, 1)
}
