// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package countervm

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/api"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/contract"
)

func TestServiceHello(t *testing.T) {
	tests := []string{"near", "alice.testnet"}
	for _, to := range tests {
		t.Run(to, func(t *testing.T) {
			require := require.New(t)

			_, service, _, err := newTestVM()
			require.NoError(err)

			reply := &HelloReply{}
			require.NoError(service.Hello(nil, &HelloArgs{To: contract.MustParseAccountID(to)}, reply))
			require.Equal("hello", reply.Greeting)
			require.Equal(to, reply.To.String())
		})
	}
}

func TestServiceHelloMissingAccount(t *testing.T) {
	_, service, _, err := newTestVM()
	require.NoError(t, err)
	require.ErrorIs(t, service.Hello(nil, &HelloArgs{}, &HelloReply{}), errMissingAccountID)
}

func TestServiceSubmitCallRejectsInvalidCalls(t *testing.T) {
	require := require.New(t)

	_, service, _, err := newTestVM()
	require.NoError(err)

	err = service.SubmitCall(nil, &SubmitCallArgs{Method: "increment", Args: `{}`}, &api.EmptyReply{})
	require.ErrorIs(err, contract.ErrUnknownMethod)

	err = service.SubmitCall(nil, &SubmitCallArgs{Method: contract.HelloMethod, Args: `{"to":"X"}`}, &api.EmptyReply{})
	require.ErrorIs(err, contract.ErrInvalidArgs)
}

func TestServiceSubmitCallFullMempool(t *testing.T) {
	require := require.New(t)

	_, service, _, err := newTestVMWithDB(newTestDBManager(), nil, []byte(`{"mempoolSize":1}`))
	require.NoError(err)

	args := &SubmitCallArgs{Method: contract.HelloMethod, Args: `{"to":"near"}`}
	require.NoError(service.SubmitCall(nil, args, &api.EmptyReply{}))
	require.ErrorIs(service.SubmitCall(nil, args, &api.EmptyReply{}), errMempoolFull)
}

func TestServiceGetBlockAndReceipt(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	vm, service, _, err := newTestVM()
	require.NoError(err)

	genesisReply := &GetBlockReply{}
	require.NoError(service.GetBlock(nil, &BlockIDArgs{ID: ids.Empty}, genesisReply))
	require.Zero(genesisReply.Height)
	require.Empty(genesisReply.Calls)

	genesisBlock, err := vm.GetBlock(ctx, genesisReply.ID)
	require.NoError(err)
	require.NoError(vm.SubmitCall(helloCall("alice.testnet")))
	block, err := vm.BuildBlock(ctx, genesisBlock)
	require.NoError(err)
	decider, err := vm.Verify(ctx, genesisBlock, block)
	require.NoError(err)
	require.NoError(decider.Accept(ctx))

	byID := &GetBlockReply{}
	require.NoError(service.GetBlock(nil, &BlockIDArgs{ID: block.ID()}, byID))
	lastAccepted := &GetBlockReply{}
	require.NoError(service.GetBlock(nil, &BlockIDArgs{}, lastAccepted))
	require.Equal(byID, lastAccepted)
	require.Equal(block.ID(), byID.ID)
	require.Equal(genesisBlock.ID(), byID.ParentID)
	require.EqualValues(1, byID.Height)
	require.Equal([]APICall{{Method: contract.HelloMethod, Args: `{"to":"alice.testnet"}`}}, byID.Calls)

	receiptReply := &GetReceiptReply{}
	require.NoError(service.GetReceipt(nil, &GetReceiptArgs{BlockID: block.ID()}, receiptReply))
	require.Equal(contract.HelloMethod, receiptReply.Method)
	require.JSONEq(`["hello","alice.testnet"]`, receiptReply.Result)

	require.Error(service.GetReceipt(nil, &GetReceiptArgs{BlockID: block.ID(), Index: 1}, &GetReceiptReply{}))
	require.Error(service.GetBlock(nil, &BlockIDArgs{ID: ids.GenerateTestID()}, &GetBlockReply{}))
}

func TestServiceGetState(t *testing.T) {
	require := require.New(t)

	_, service, _, err := newTestVM()
	require.NoError(err)

	reply := &GetStateReply{}
	require.NoError(service.GetState(nil, &GetStateArgs{Encoding: formatting.Hex}, reply))
	require.Equal(formatting.Hex, reply.Encoding)

	stateBytes, err := formatting.Decode(reply.Encoding, reply.State)
	require.NoError(err)
	state, err := contract.UnmarshalState(stateBytes)
	require.NoError(err)
	require.Equal(contract.NewCounter(), state)

	expectedRoot, err := contract.StateRoot(state)
	require.NoError(err)
	require.Equal(expectedRoot, reply.StateRoot)
}
