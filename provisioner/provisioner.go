// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package provisioner assembles the per-block inherent data a relay
// chain runtime needs to build a block: a selection of availability
// bitfields, backed parachain candidates and disputes, computed fresh
// for every activated leaf and handed back on request (spec.md §1–§2).
package provisioner

import (
	"context"
	"math/rand"
	"sync"
	"time"

	luxlog "github.com/luxfi/log"

	"github.com/luxfi/provisioner/config"
	provlog "github.com/luxfi/provisioner/log"
	"github.com/luxfi/provisioner/metrics"
	"github.com/luxfi/provisioner/subsystem"
)

// Provisioner owns one PerParentStore and the goroutines assembling
// inherent data for it. The zero value is not usable; construct one
// with New.
type Provisioner struct {
	cfg config.Config
	log luxlog.Logger
	met *metrics.Metrics

	deps assemblyDeps

	store *store
	gate  *readinessGate

	seedMu sync.Mutex
	seed   *rand.Rand

	signals  <-chan Signal
	messages <-chan Message
	done     chan assemblyOutcome
}

// New constructs a Provisioner. signals and messages are the
// provisioner's inbound channels (spec.md §6); the caller owns them.
// A Conclude signal stops Run cleanly; closing either channel ends Run
// with the fatal ErrSubsystemContextLost.
func New(
	cfg config.Config,
	logger luxlog.Logger,
	met *metrics.Metrics,
	runtime subsystem.RuntimeApi,
	chain subsystem.ChainApi,
	disputes subsystem.DisputeCoordinator,
	backing subsystem.CandidateBacking,
	signals <-chan Signal,
	messages <-chan Message,
) *Provisioner {
	if logger == nil {
		logger = provlog.NewNoOpLogger()
	}
	seed := cfg.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Provisioner{
		cfg: cfg,
		log: logger,
		met: met,
		deps: assemblyDeps{
			Runtime:  runtime,
			Chain:    chain,
			Disputes: disputes,
			Backing:  backing,
		},
		store:    newStore(),
		gate:     newReadinessGate(cfg.PreProposeTimeout),
		seed:     rand.New(rand.NewSource(seed)),
		signals:  signals,
		messages: messages,
		done:     make(chan assemblyOutcome, 8),
	}
}

// freshRand hands out a private *rand.Rand seeded from the
// provisioner's own source, so concurrent assemblies never share one
// math/rand.Rand across goroutines (which is not safe for concurrent
// use) while still being deterministic under a fixed cfg.RandSeed.
func (p *Provisioner) freshRand() *rand.Rand {
	p.seedMu.Lock()
	s := p.seed.Int63()
	p.seedMu.Unlock()
	return rand.New(rand.NewSource(s))
}

// Run drives the main loop until ctx is canceled, a Conclude signal is
// received, or the signal channel is closed. It returns the error that
// ended the loop, or nil on a clean Conclude.
func (p *Provisioner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case sig, ok := <-p.signals:
			if !ok {
				return Fatal(ErrSubsystemContextLost)
			}
			if stop, err := p.handleSignal(ctx, sig); stop {
				return err
			}

		case msg, ok := <-p.messages:
			if !ok {
				return Fatal(ErrSubsystemContextLost)
			}
			p.handleMessage(ctx, msg)

		case rp := <-p.gate.fire():
			p.onReady(ctx, rp)

		case outcome := <-p.done:
			p.onAssemblyDone(outcome)
		}
	}
}
