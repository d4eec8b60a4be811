// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/vms/rpcchainvm"
	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/countervm/countervm"
)

func main() {
	p, err := parseParams()
	if err != nil {
		fmt.Printf("couldn't get config: %s\n", err)
		os.Exit(1)
	}
	// Print version and exit
	if p.printVersion {
		fmt.Printf("%s@%s\n", countervm.Name, countervm.Version)
		os.Exit(0)
	}
	// Print VM ID and exit
	if p.printVMID {
		fmt.Println(countervm.ID)
		os.Exit(0)
	}

	lvl, err := log.LvlFromString(p.logLevel)
	if err != nil {
		fmt.Printf("invalid log level: %s\n", err)
		os.Exit(1)
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat())))

	if err := rpcchainvm.Serve(context.Background(), countervm.NewChainVM()); err != nil {
		log.Error("serve returned an error", "err", err)
		os.Exit(1)
	}
}
