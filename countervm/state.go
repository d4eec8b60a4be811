// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package countervm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/countervm/contract"
)

var (
	contractStateKey = []byte(ContractName)

	errBlockWrongVersion   = errors.New("wrong block version")
	errReceiptWrongVersion = errors.New("wrong receipt version")
)

// contractState persists the hosted contract's state and the receipts of
// accepted calls.
type contractState struct {
	stateDB   database.Database
	receiptDB database.Database
}

func newContractState(stateDB, receiptDB database.Database) *contractState {
	return &contractState{
		stateDB:   stateDB,
		receiptDB: receiptDB,
	}
}

// IsInitialized returns true once the contract state has been written
func (s *contractState) IsInitialized() (bool, error) {
	return s.stateDB.Has(contractStateKey)
}

// Init writes the default contract state
func (s *contractState) Init() error {
	stateBytes, err := contract.MarshalState(contract.NewCounter())
	if err != nil {
		return fmt.Errorf("failed to marshal default contract state: %w", err)
	}
	return s.stateDB.Put(contractStateKey, stateBytes)
}

// Bytes returns the persisted contract state
func (s *contractState) Bytes() ([]byte, error) {
	stateBytes, err := s.stateDB.Get(contractStateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract state: %w", err)
	}
	return stateBytes, nil
}

// Get returns the persisted contract state
func (s *contractState) Get() (contract.Counter, error) {
	stateBytes, err := s.Bytes()
	if err != nil {
		return contract.Counter{}, err
	}
	return contract.UnmarshalState(stateBytes)
}

// Root returns the root of the persisted contract state
func (s *contractState) Root() (ids.ID, error) {
	state, err := s.Get()
	if err != nil {
		return ids.Empty, err
	}
	return contract.StateRoot(state)
}

// Execute runs [calls] against the persisted state without writing anything
func (s *contractState) Execute(blkID ids.ID, calls []Call) ([]*Receipt, error) {
	state, err := s.Get()
	if err != nil {
		return nil, err
	}
	receipts := make([]*Receipt, len(calls))
	for i, call := range calls {
		result, err := contract.Dispatch(state, call.Method, call.Args)
		if err != nil {
			return nil, fmt.Errorf("call %d (%s) failed: %w", i, call.Method, err)
		}
		receipts[i] = &Receipt{
			BlockID: blkID,
			Index:   uint32(i),
			Method:  call.Method,
			Result:  result,
		}
	}
	return receipts, nil
}

func receiptKey(blkID ids.ID, index uint32) []byte {
	key := make([]byte, len(blkID)+wrappers.IntLen)
	copy(key, blkID[:])
	binary.BigEndian.PutUint32(key[len(blkID):], index)
	return key
}

// PutReceipt stores [receipt]
func (s *contractState) PutReceipt(receipt *Receipt) error {
	receiptBytes, err := Codec.Marshal(CodecVersion, receipt)
	if err != nil {
		return err
	}
	return s.receiptDB.Put(receiptKey(receipt.BlockID, receipt.Index), receiptBytes)
}

// GetReceipt returns the receipt of call [index] in block [blkID]
func (s *contractState) GetReceipt(blkID ids.ID, index uint32) (*Receipt, error) {
	receiptBytes, err := s.receiptDB.Get(receiptKey(blkID, index))
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{}
	parsedVersion, err := Codec.Unmarshal(receiptBytes, receipt)
	if err != nil {
		return nil, err
	}
	if parsedVersion != CodecVersion {
		return nil, errReceiptWrongVersion
	}
	return receipt, nil
}
