//go:build unix

package main

import (
	"os"
	"syscall"
)

var (
	signalReload os.Signal = syscall.SIGHUP

	controlSignals = []os.Signal{syscall.SIGUSR1, syscall.SIGHUP}
)
