// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package countervm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/api"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/countervm/contract"
)

var (
	errCannotGetLastAccepted = errors.New("cannot get last accepted block")
	errMissingAccountID      = errors.New("missing account ID")
)

// Service is the API service for this VM
type Service struct{ vm *VM }

// HelloArgs are the arguments to Hello
type HelloArgs struct {
	To contract.AccountID `json:"to"`
}

// HelloReply is the reply from Hello
type HelloReply struct {
	Greeting string             `json:"greeting"`
	To       contract.AccountID `json:"to"`
}

// Hello calls the contract's hello method without producing a block
func (s *Service) Hello(_ *http.Request, args *HelloArgs, reply *HelloReply) error {
	if args.To.IsEmpty() {
		return errMissingAccountID
	}
	greeting, to, err := s.vm.Hello(args.To)
	if err != nil {
		s.vm.log.Error("hello failed", "err", err)
		return err
	}
	reply.Greeting = greeting
	reply.To = to
	return nil
}

// SubmitCallArgs are the arguments to SubmitCall
type SubmitCallArgs struct {
	Method string `json:"method"`
	// Args is the JSON encoding of the method's arguments
	Args string `json:"args"`
}

// SubmitCall queues a contract call to be included in a future block
func (s *Service) SubmitCall(_ *http.Request, args *SubmitCallArgs, _ *api.EmptyReply) error {
	return s.vm.SubmitCall(Call{
		Method: args.Method,
		Args:   []byte(args.Args),
	})
}

// BlockIDArgs is an API request where the only argument is a single block ID
type BlockIDArgs struct {
	// ID of the block. The empty ID refers to the last accepted block.
	ID ids.ID `json:"id"`
}

// APICall is the API representation of a Call
type APICall struct {
	Method string `json:"method"`
	Args   string `json:"args"`
}

// GetBlockReply is the reply from GetBlock
type GetBlockReply struct {
	ID        ids.ID      `json:"id"`
	ParentID  ids.ID      `json:"parentID"`
	Height    json.Uint64 `json:"height"`
	Timestamp json.Uint64 `json:"timestamp"`
	StateRoot ids.ID      `json:"stateRoot"`
	Calls     []APICall   `json:"calls"`
}

// GetBlock gets the block whose ID is [args.ID]
// If [args.ID] is empty, get the latest block
func (s *Service) GetBlock(_ *http.Request, args *BlockIDArgs, reply *GetBlockReply) error {
	var (
		requestedBlockID = args.ID
		err              error
	)
	if requestedBlockID == ids.Empty {
		requestedBlockID, err = s.vm.LastAccepted(context.Background())
		if err != nil {
			return errCannotGetLastAccepted
		}
	}
	block, err := s.vm.GetBlock(context.TODO(), requestedBlockID)
	if err != nil {
		return err
	}

	reply.ID = block.ID()
	reply.ParentID = block.Parent()
	reply.Height = json.Uint64(block.Hght)
	reply.Timestamp = json.Uint64(block.Tmstmp)
	reply.StateRoot = block.StateRoot
	reply.Calls = make([]APICall, len(block.Calls))
	for i, call := range block.Calls {
		reply.Calls[i] = APICall{
			Method: call.Method,
			Args:   string(call.Args),
		}
	}
	return nil
}

// GetReceiptArgs are the arguments to GetReceipt
type GetReceiptArgs struct {
	BlockID ids.ID      `json:"blockID"`
	Index   json.Uint32 `json:"index"`
}

// GetReceiptReply is the reply from GetReceipt
type GetReceiptReply struct {
	BlockID ids.ID      `json:"blockID"`
	Index   json.Uint32 `json:"index"`
	Method  string      `json:"method"`
	// Result is the JSON encoded result of the call
	Result string `json:"result"`
}

// GetReceipt returns the result of an accepted call
func (s *Service) GetReceipt(_ *http.Request, args *GetReceiptArgs, reply *GetReceiptReply) error {
	receipt, err := s.vm.state.GetReceipt(args.BlockID, uint32(args.Index))
	if err != nil {
		return fmt.Errorf("couldn't get receipt %d of block %s: %w", args.Index, args.BlockID, err)
	}
	reply.BlockID = receipt.BlockID
	reply.Index = json.Uint32(receipt.Index)
	reply.Method = receipt.Method
	reply.Result = string(receipt.Result)
	return nil
}

// GetStateArgs are the arguments to GetState
type GetStateArgs struct {
	Encoding formatting.Encoding `json:"encoding"`
}

// GetStateReply is the reply from GetState
type GetStateReply struct {
	State     string              `json:"state"`
	StateRoot ids.ID              `json:"stateRoot"`
	Encoding  formatting.Encoding `json:"encoding"`
}

// GetState returns the persisted contract state
func (s *Service) GetState(_ *http.Request, args *GetStateArgs, reply *GetStateReply) error {
	stateBytes, err := s.vm.state.Bytes()
	if err != nil {
		return err
	}
	stateRoot, err := s.vm.state.Root()
	if err != nil {
		return err
	}
	reply.State, err = formatting.Encode(args.Encoding, stateBytes)
	if err != nil {
		return fmt.Errorf("couldn't encode state as string: %w", err)
	}
	reply.StateRoot = stateRoot
	reply.Encoding = args.Encoding
	return nil
}
