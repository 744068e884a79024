// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics implements a kernel.MetricsSink backed by
// prometheus/client_golang, registered the way the platform's own RPC
// servers register their collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Sink is a prometheus-backed kernel.MetricsSink.
type Sink struct {
	blocksAccepted    prometheus.Counter
	chunksAccepted    prometheus.Counter
	signatureRequests prometheus.Counter
	stopsEmitted      prometheus.Counter
	holdsInstalled    prometheus.Counter
	holdsCleared      prometheus.Counter
	nextNonce         prometheus.Gauge
}

// NewSink constructs a Sink and registers its collectors with
// registerer.
func NewSink(registerer prometheus.Registerer, namespace string) (*Sink, error) {
	s := &Sink{
		blocksAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "nock_blocks_accepted_total",
			Help: "Number of Nock blocks the kernel has accepted.",
		}),
		chunksAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "base_chunks_accepted_total",
			Help: "Number of Base block chunks the kernel has accepted.",
		}),
		signatureRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "signature_requests_emitted_total",
			Help: "Number of SignatureRequests this node has emitted as proposer.",
		}),
		stopsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "stops_emitted_total",
			Help: "Number of Stop effects the kernel has emitted.",
		}),
		holdsInstalled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "holds_installed_total",
			Help: "Number of times a hold has been installed.",
		}),
		holdsCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "holds_cleared_total",
			Help: "Number of times a pending hold has cleared.",
		}),
		nextNonce: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "next_nonce",
			Help: "The kernel's current next_nonce value.",
		}),
	}

	collectors := []prometheus.Collector{
		s.blocksAccepted, s.chunksAccepted, s.signatureRequests,
		s.stopsEmitted, s.holdsInstalled, s.holdsCleared, s.nextNonce,
	}
	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Sink) BlockAccepted()           { s.blocksAccepted.Inc() }
func (s *Sink) ChunkAccepted()           { s.chunksAccepted.Inc() }
func (s *Sink) SignatureRequestEmitted() { s.signatureRequests.Inc() }
func (s *Sink) StopEmitted()             { s.stopsEmitted.Inc() }
func (s *Sink) HoldInstalled()           { s.holdsInstalled.Inc() }
func (s *Sink) HoldCleared()             { s.holdsCleared.Inc() }
func (s *Sink) SetNextNonce(n uint64)    { s.nextNonce.Set(float64(n)) }
