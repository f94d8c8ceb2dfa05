// Package main is built with -buildmode=plugin to produce the
// reference protocol-server plugin's .so, exporting the six symbols
// the plugin host resolves by name.
package main

import (
	"github.com/scanworks/plcruntime/plugins/protocolserver"
)

// Init is the required entry point called once, before Start.
var Init = protocolserver.Init

// Start is the required entry point called once the scan-cycle engine
// reaches RUNNING.
var Start = protocolserver.Start

// Stop is the required entry point called before Cleanup.
var Stop = protocolserver.Stop

// Cleanup is the required entry point called after Stop.
var Cleanup = protocolserver.Cleanup

// CycleStart is the optional per-tick hook called with the image lock
// held, before the control program runs.
var CycleStart = protocolserver.CycleStart

// CycleEnd is the optional per-tick hook called with the image lock
// still held, after the control program runs.
var CycleEnd = protocolserver.CycleEnd

func main() {}
