// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ava-labs/avalanchego/api"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	avalancheJSON "github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/ava-labs/countervm/contract"
	"github.com/ava-labs/countervm/countervm"
)

// Client defines countervm client operations.
type Client interface {
	// Hello calls the contract's hello method without producing a block
	Hello(ctx context.Context, to contract.AccountID) (string, contract.AccountID, error)

	// SubmitCall queues a call of [method] with JSON encoded [args] for a future block
	SubmitCall(ctx context.Context, method string, args interface{}) error

	// GetBlock fetches the block corresponding to [blockID].
	// Fetches the last accepted block if [blockID] is the empty ID
	GetBlock(ctx context.Context, blockID ids.ID) (*countervm.GetBlockReply, error)

	// GetReceipt fetches the result of call [index] of the accepted block [blockID]
	GetReceipt(ctx context.Context, blockID ids.ID, index uint32) (*countervm.GetReceiptReply, error)

	// GetState fetches and decodes the persisted contract state
	GetState(ctx context.Context) (contract.Counter, ids.ID, error)
}

// New creates a new client object. [uri] is the chain's API endpoint,
// e.g. http://127.0.0.1:9650/ext/bc/<chainID>/counter
func New(uri string) Client {
	req := rpc.NewEndpointRequester(uri)
	return &client{req: req}
}

type client struct {
	req rpc.EndpointRequester
}

func (c *client) Hello(ctx context.Context, to contract.AccountID) (string, contract.AccountID, error) {
	resp := new(countervm.HelloReply)
	err := c.req.SendRequest(ctx,
		"counter.hello",
		&countervm.HelloArgs{To: to},
		resp,
	)
	if err != nil {
		return "", contract.AccountID{}, err
	}
	return resp.Greeting, resp.To, nil
}

func (c *client) SubmitCall(ctx context.Context, method string, args interface{}) error {
	argsBytes, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal %s args: %w", method, err)
	}
	return c.req.SendRequest(ctx,
		"counter.submitCall",
		&countervm.SubmitCallArgs{Method: method, Args: string(argsBytes)},
		&api.EmptyReply{},
	)
}

func (c *client) GetBlock(ctx context.Context, blockID ids.ID) (*countervm.GetBlockReply, error) {
	resp := new(countervm.GetBlockReply)
	return resp, c.req.SendRequest(ctx,
		"counter.getBlock",
		&countervm.BlockIDArgs{ID: blockID},
		resp,
	)
}

func (c *client) GetReceipt(ctx context.Context, blockID ids.ID, index uint32) (*countervm.GetReceiptReply, error) {
	resp := new(countervm.GetReceiptReply)
	return resp, c.req.SendRequest(ctx,
		"counter.getReceipt",
		&countervm.GetReceiptArgs{BlockID: blockID, Index: avalancheJSON.Uint32(index)},
		resp,
	)
}

func (c *client) GetState(ctx context.Context) (contract.Counter, ids.ID, error) {
	resp := new(countervm.GetStateReply)
	err := c.req.SendRequest(ctx,
		"counter.getState",
		&countervm.GetStateArgs{Encoding: formatting.Hex},
		resp,
	)
	if err != nil {
		return contract.Counter{}, ids.Empty, err
	}
	stateBytes, err := formatting.Decode(resp.Encoding, resp.State)
	if err != nil {
		return contract.Counter{}, ids.Empty, err
	}
	state, err := contract.UnmarshalState(stateBytes)
	return state, resp.StateRoot, err
}
