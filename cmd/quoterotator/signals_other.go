//go:build !unix

package main

import "os"

var (
	signalReload os.Signal

	controlSignals []os.Signal
)
