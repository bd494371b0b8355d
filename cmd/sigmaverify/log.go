package main

import (
	"fmt"
	"os"

	"github.com/thub1271/sigmastate-interpreter/infrastructure/logger"
	"github.com/thub1271/sigmastate-interpreter/util/panics"
)

var (
	log   = logger.RegisterSubSystem("SGVF")
	spawn = panics.GoroutineWrapperFunc(log)
)

func initLog(cfg *configFlags) {
	level, ok := logger.LevelFromString(cfg.LogLevel)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown log level: %s\n", cfg.LogLevel)
		os.Exit(1)
	}
	logger.SetLogLevels(level)

	var err error
	if cfg.LogFile != "" {
		err = logger.InitLog(cfg.LogFile, level)
	} else {
		err = logger.InitLogStdout(level)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %s\n", err)
		os.Exit(1)
	}
}
