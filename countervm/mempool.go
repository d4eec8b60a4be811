// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package countervm

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/snow/engine/common"

	"github.com/ava-labs/countervm/contract"
)

var (
	errEmptyMempool = errors.New("empty mempool")
	errMempoolFull  = errors.New("mempool is full")
)

// mempool is a bounded FIFO of calls waiting to be built into a block
type mempool struct {
	toEngine chan<- common.Message
	calls    chan Call
}

func newMempool(toEngine chan<- common.Message, size int) *mempool {
	return &mempool{
		calls:    make(chan Call, size),
		toEngine: toEngine,
	}
}

// Add queues [call] if it can be executed and notifies the engine
func (m *mempool) Add(call Call) error {
	if err := contract.ValidateCall(call.Method, call.Args); err != nil {
		return err
	}

	select {
	case m.calls <- call:
	default:
		return fmt.Errorf("%w: failed to add call %q at size (%d)", errMempoolFull, call.Method, cap(m.calls))
	}

	m.notify()
	return nil
}

// Next pops the oldest call
func (m *mempool) Next() (Call, error) {
	select {
	case call := <-m.calls:
		return call, nil
	default:
		return Call{}, errEmptyMempool
	}
}

func (m *mempool) Len() int {
	return len(m.calls)
}

// NotifyBuildBlock tells the engine there is still work to do, if there is
func (m *mempool) NotifyBuildBlock() {
	if m.Len() > 0 {
		m.notify()
	}
}

func (m *mempool) notify() {
	select {
	case m.toEngine <- common.PendingTxs:
	default:
	}
}
