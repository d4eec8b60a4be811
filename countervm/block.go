// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package countervm

import (
	"context"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/countervm/sdk/stack"
)

// Type assertions
var (
	_ stack.StatelessBlock = (*Block)(nil)
	_ stack.Decider        = (*blockDecider)(nil)
)

// Call is a request to invoke a contract method. It is the only kind of
// transaction this chain carries.
type Call struct {
	Method string `serialize:"true" json:"method"`
	Args   []byte `serialize:"true" json:"args"` // JSON encoded method arguments
}

// Receipt records the result of a call accepted into the chain
type Receipt struct {
	BlockID ids.ID `serialize:"true" json:"blockID"`
	Index   uint32 `serialize:"true" json:"index"`
	Method  string `serialize:"true" json:"method"`
	Result  []byte `serialize:"true" json:"result"`
}

// Block defines a stateless block
type Block struct {
	PrntID    ids.ID `serialize:"true" json:"parentID"`  // parent's ID
	Hght      uint64 `serialize:"true" json:"height"`    // This block's height. The genesis block is at height 0.
	Tmstmp    int64  `serialize:"true" json:"timestamp"` // Time this block was proposed at
	StateRoot ids.ID `serialize:"true" json:"stateRoot"` // root of the contract state after executing Calls
	Calls     []Call `serialize:"true" json:"calls"`

	id    ids.ID // hold this block's ID
	bytes []byte // this block's encoded bytes
}

// ID returns the ID of this block
func (b *Block) ID() ids.ID { return b.id }

// Parent returns [b]'s parent's ID
func (b *Block) Parent() ids.ID { return b.PrntID }

// Height returns this block's height. The genesis block has height 0.
func (b *Block) Height() uint64 { return b.Hght }

// Timestamp returns this block's time. The genesis block has time 0.
func (b *Block) Timestamp() time.Time { return time.Unix(b.Tmstmp, 0) }

// Bytes returns the byte repr. of this block
func (b *Block) Bytes() []byte { return b.bytes }

// initialize encodes [b] and caches its bytes and ID
func (b *Block) initialize() error {
	bytes, err := Codec.Marshal(CodecVersion, b)
	if err != nil {
		return err
	}
	b.bytes = bytes
	b.id = hashing.ComputeHash256Array(bytes)
	return nil
}

// ParseBlock parses a block from the bytes produced by the codec
func ParseBlock(b []byte) (*Block, error) {
	block := &Block{}
	parsedVersion, err := Codec.Unmarshal(b, block)
	if err != nil {
		return nil, err
	}
	if parsedVersion != CodecVersion {
		return nil, errBlockWrongVersion
	}

	block.id = hashing.ComputeHash256Array(b)
	block.bytes = b
	return block, nil
}

// blockDecider holds the receipts produced by verifying a block until
// consensus decides it
type blockDecider struct {
	*Block

	receipts []*Receipt
	vm       *VM
}

func (d *blockDecider) Accept(context.Context) error {
	return d.vm.acceptBlock(d.Block, d.receipts)
}

// Abandon is a no-op since verification does not write to the database
func (d *blockDecider) Abandon(context.Context) error {
	return nil
}
