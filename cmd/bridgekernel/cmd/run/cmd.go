// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package run implements the bridgekernel run subcommand: it hosts
// the kernel's dispatcher behind a JSON-RPC 2.0 listener and exposes
// its prometheus collectors.
package run

import (
	"errors"
	"net/http"

	gorillarpc "github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/bridgekernel/kernel"
	bridgemetrics "github.com/luxfi/bridgekernel/metrics"
	bridgerpc "github.com/luxfi/bridgekernel/rpc"
)

var (
	addr             string
	metricsNamespace string
)

// Command returns the run subcommand.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the bridge coordination kernel behind a JSON-RPC listener",
		RunE:  runFunc,
	}
	cmd.Flags().StringVar(&addr, "addr", ":8645", "address to listen on")
	cmd.Flags().StringVar(&metricsNamespace, "metrics-namespace", "bridgekernel", "prometheus metrics namespace")
	return cmd
}

func runFunc(cmd *cobra.Command, _ []string) error {
	logger := log.Root()

	store := kernel.NewStore(memdb.New())
	state, err := store.Load()
	if errors.Is(err, database.ErrNotFound) {
		constants := kernel.DefaultConstants()
		lockRoot := kernel.NockHash{}
		state = kernel.NewBridgeState(kernel.NodeConfig{NodeID: ids.EmptyNodeID}, constants, lockRoot)
	} else if err != nil {
		return err
	} else {
		logger.Info("loaded persisted bridge state")
	}

	registry := prometheus.NewRegistry()
	sink, err := bridgemetrics.NewSink(registry, metricsNamespace)
	if err != nil {
		return err
	}

	dispatcher := kernel.NewDispatcher(state, logger, sink, kernel.NodeInfo{})

	server := gorillarpc.NewServer()
	server.RegisterCodec(json2.NewCodec(), "application/json")
	server.RegisterCodec(json2.NewCodec(), "application/json;charset=UTF-8")
	if err := bridgerpc.RegisterService(server, dispatcher, store); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/rpc", server)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	logger.Info("starting bridge coordination kernel", log.String("addr", addr))
	return http.ListenAndServe(addr, mux)
}
