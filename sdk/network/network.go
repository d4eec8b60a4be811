// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"context"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow/engine/common"
	"github.com/ava-labs/avalanchego/snow/validators"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/version"
)

var (
	_ common.AppHandler    = (*Network)(nil)
	_ validators.Connector = (*Network)(nil)
)

// Network fans peer connection events out to its connectors and tracks the
// currently connected peers. App messages are dropped.
type Network struct {
	common.AppHandler

	peerTracker *peerTracker

	connectorsLock sync.RWMutex
	connectors     []validators.Connector
}

func NewNetwork(log logging.Logger, connectors []validators.Connector) *Network {
	if log == nil {
		log = logging.NoLog{}
	}
	peerTracker := newPeerTracker()
	return &Network{
		AppHandler:  common.NewNoOpAppHandler(log),
		peerTracker: peerTracker,
		connectors:  append([]validators.Connector{peerTracker}, connectors...),
	}
}

// AddConnector registers [connector] for future connection events
func (n *Network) AddConnector(connector validators.Connector) {
	n.connectorsLock.Lock()
	defer n.connectorsLock.Unlock()

	n.connectors = append(n.connectors, connector)
}

// Peers returns the number of connected peers
func (n *Network) Peers() int {
	return n.peerTracker.Len()
}

// PeerVersion returns the version reported by [nodeID] if it is connected
func (n *Network) PeerVersion(nodeID ids.NodeID) (*version.Application, bool) {
	return n.peerTracker.Version(nodeID)
}

func (n *Network) Connected(ctx context.Context, nodeID ids.NodeID, nodeVersion *version.Application) error {
	n.connectorsLock.RLock()
	defer n.connectorsLock.RUnlock()

	for _, connector := range n.connectors {
		if err := connector.Connected(ctx, nodeID, nodeVersion); err != nil {
			return err
		}
	}
	return nil
}

func (n *Network) Disconnected(ctx context.Context, nodeID ids.NodeID) error {
	n.connectorsLock.RLock()
	defer n.connectorsLock.RUnlock()

	for _, connector := range n.connectors {
		if err := connector.Disconnected(ctx, nodeID); err != nil {
			return err
		}
	}
	return nil
}
