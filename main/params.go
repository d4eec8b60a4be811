// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"flag"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	versionKey  = "version"
	vmIDKey     = "vmID"
	logLevelKey = "log-level"

	envPrefix = "countervm"
)

func buildFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("countervm", flag.ContinueOnError)

	fs.Bool(versionKey, false, "If true, prints Version and quit")
	fs.Bool(vmIDKey, false, "If true, prints vmID and quit")
	fs.String(logLevelKey, "info", "Log level of the plugin process")

	return fs
}

// getViper returns the viper environment for the plugin binary
func getViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := buildFlagSet()
	pflag.CommandLine.AddGoFlagSet(fs)
	pflag.Parse()
	if err := v.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	return v, nil
}

type params struct {
	printVersion bool
	printVMID    bool
	logLevel     string
}

func parseParams() (params, error) {
	v, err := getViper()
	if err != nil {
		return params{}, err
	}

	return params{
		printVersion: v.GetBool(versionKey),
		printVMID:    v.GetBool(vmIDKey),
		logLevel:     v.GetString(logLevelKey),
	}, nil
}
