// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package countervm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ContractName is the name of the only contract this VM hosts
const ContractName = "counter"

var errUnknownContract = errors.New("unknown contract")

// Genesis describes the initial state of the chain
type Genesis struct {
	Contract string `json:"contract"`
}

// DefaultGenesis returns the genesis used when no genesis bytes are given
func DefaultGenesis() Genesis {
	return Genesis{Contract: ContractName}
}

// ParseGenesis parses JSON genesis bytes. Empty bytes yield DefaultGenesis.
func ParseGenesis(genesisBytes []byte) (Genesis, error) {
	genesis := DefaultGenesis()
	if len(genesisBytes) == 0 {
		return genesis, nil
	}
	if err := json.Unmarshal(genesisBytes, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("failed to unmarshal genesis: %w", err)
	}
	if genesis.Contract != ContractName {
		return Genesis{}, fmt.Errorf("%w: %q", errUnknownContract, genesis.Contract)
	}
	return genesis, nil
}

// Bytes returns the JSON encoding of [g]
func (g Genesis) Bytes() ([]byte, error) {
	return json.Marshal(g)
}
