// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package countervm

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	callsSubmitted prometheus.Counter
	callsAccepted  prometheus.Counter
	blocksBuilt    prometheus.Counter
	blocksAccepted prometheus.Counter
	views          prometheus.Counter
	mempoolSize    prometheus.Gauge
	peers          prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		callsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Name,
			Name:      "calls_submitted",
			Help:      "Number of calls added to the mempool",
		}),
		callsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Name,
			Name:      "calls_accepted",
			Help:      "Number of calls in accepted blocks",
		}),
		blocksBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Name,
			Name:      "blocks_built",
			Help:      "Number of blocks built locally",
		}),
		blocksAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Name,
			Name:      "blocks_accepted",
			Help:      "Number of blocks accepted",
		}),
		views: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Name,
			Name:      "views",
			Help:      "Number of read-only contract calls served",
		}),
		mempoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Name,
			Name:      "mempool_size",
			Help:      "Number of calls waiting in the mempool",
		}),
		peers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Name,
			Name:      "peers",
			Help:      "Number of connected peers",
		}),
	}
}

func (m *metrics) register(registerer prometheus.Registerer) error {
	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.callsSubmitted),
		registerer.Register(m.callsAccepted),
		registerer.Register(m.blocksBuilt),
		registerer.Register(m.blocksAccepted),
		registerer.Register(m.views),
		registerer.Register(m.mempoolSize),
		registerer.Register(m.peers),
	)
	return errs.Err
}
