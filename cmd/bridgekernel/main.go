// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/version"

	"github.com/luxfi/bridgekernel/cmd/bridgekernel/cmd/run"
	"github.com/luxfi/bridgekernel/cmd/bridgekernel/cmd/verifysnapshot"
)

func main() {
	root := &cobra.Command{
		Use:     "bridgekernel",
		Short:   "Runs or inspects the bridge coordination kernel",
		Version: fmt.Sprintf("bridgekernel/1.0.0 [node=%s]", version.Current),
	}
	root.AddCommand(run.Command())
	root.AddCommand(verifysnapshot.Command())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
