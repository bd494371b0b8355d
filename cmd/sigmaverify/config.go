package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/utils/constants"
	"github.com/thub1271/sigmastate-interpreter/version"
)

type configFlags struct {
	ShowVersion      bool   `short:"V" long:"version" description:"Display version information and exit"`
	Tree             string `short:"t" long:"tree" description:"Serialized script container (hex)"`
	Proof            string `short:"p" long:"proof" description:"Proof bytes (hex)"`
	Message          string `short:"m" long:"message" description:"Message bytes bound into the proof (hex)"`
	Height           uint64 `long:"height" description:"Current chain height the verification runs at"`
	CostLimit        uint64 `long:"cost-limit" description:"Hard cost budget for the verification"`
	ActivatedVersion uint8  `long:"activated-version" description:"Script version activated on the network"`
	LogLevel         string `long:"log-level" description:"Logging level {trace, debug, info, warn, error, critical, off}"`
	LogFile          string `long:"log-file" description:"Write logs to this file in addition to stdout"`
}

func parseConfig() (*configFlags, error) {
	cfg := &configFlags{
		CostLimit:        constants.DefaultCostLimit,
		ActivatedVersion: constants.MaxSupportedScriptVersion,
		LogLevel:         "info",
	}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		appName = strings.TrimSuffix(appName, filepath.Ext(appName))
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	if err != nil {
		return nil, err
	}
	if cfg.Tree == "" {
		return nil, errors.New("--tree is required")
	}
	return cfg, nil
}
