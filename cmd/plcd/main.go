package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/scanworks/plcruntime/internal/cmdsocket"
	"github.com/scanworks/plcruntime/internal/controlprogram"
	"github.com/scanworks/plcruntime/internal/daemonconfig"
	"github.com/scanworks/plcruntime/internal/imagetable"
	"github.com/scanworks/plcruntime/internal/journal"
	"github.com/scanworks/plcruntime/internal/logsink"
	"github.com/scanworks/plcruntime/internal/persistence"
	"github.com/scanworks/plcruntime/internal/pluginhost"
	"github.com/scanworks/plcruntime/internal/scancycle"
	"github.com/scanworks/plcruntime/internal/watchdog"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero"

const (
	journalCapacity    = 1024
	imageTableCapacity = 512
)

func main() {
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, _, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		os.Stdout.WriteString(program + " version " + version + "\n")
		return
	}
	if len(options["help"]) > 0 {
		os.Stdout.WriteString("usage: " + program + " --config-file=FILE [--quiet]\n")
		return
	}
	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: exactly one --config-file option is required", program)
	}

	config, err := daemonconfig.Load(options["config-file"][0])
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration: %s", program, err)
	}

	if err := persistence.EnsureDirectory(config.DataDirectory); nil != err {
		exitwithstatus.Message("%s: cannot create data directory: %s", program, err)
	}

	if err := logger.Initialise(config.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed: %s", program, err)
	}
	defer logger.Finalise()

	log := logger.New("main")
	defer log.Info("finished")
	log.Infof("starting, version %s", version)

	sink := logsink.NewSink(os.Stdout, config.LogSinkSocket)
	defer sink.Close()
	sink.Emit("info", "main", "starting")

	if "" != config.PidFile {
		lockFile, err := os.OpenFile(config.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if nil != err {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: pid file creation failed: %s", program, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(config.PidFile)
	}

	if err := imagetable.Initialise(imageTableCapacity); nil != err {
		log.Criticalf("image table initialise failed: %s", err)
		exitwithstatus.Message("image table initialise failed: %s", err)
	}
	defer imagetable.Finalise()

	if err := journal.Init(); nil != err {
		log.Criticalf("journal initialise failed: %s", err)
		exitwithstatus.Message("journal initialise failed: %s", err)
	}
	defer journal.Cleanup()

	descriptorFile, err := os.Open(config.PluginDescriptors)
	if nil != err {
		log.Criticalf("cannot open plugin descriptors: %s", err)
		exitwithstatus.Message("cannot open plugin descriptors: %s", err)
	}
	if err := pluginhost.Initialise(descriptorFile); nil != err {
		descriptorFile.Close()
		log.Criticalf("plugin host initialise failed: %s", err)
		exitwithstatus.Message("plugin host initialise failed: %s", err)
	}
	descriptorFile.Close()
	defer pluginhost.Stop()

	module, err := controlprogram.Load(config.ControlProgram)
	if nil != err {
		log.Criticalf("control program load failed: %s", err)
		exitwithstatus.Message("control program load failed: %s", err)
	}

	wdClient := watchdog.NewClient(config.WatchdogSocket)
	defer wdClient.Close()

	if err := scancycle.Initialise(module, pluginhost.Hooks{}, wdClient); nil != err {
		log.Criticalf("scan-cycle initialise failed: %s", err)
		exitwithstatus.Message("scan-cycle initialise failed: %s", err)
	}

	watcher, err := pluginhost.NewDescriptorWatcher(config.PluginDescriptors)
	if nil != err {
		log.Warnf("plugin descriptor watcher disabled: %s", err)
	} else {
		watcher.Start()
		defer watcher.Stop()
		go func() {
			for range watcher.Changed() {
				reloadPlugins(log, config.PluginDescriptors)
			}
		}()
	}

	cmdSrv := cmdsocket.New(config.CommandSocket, cmdsocket.Handlers{
		Start: scancycle.Start,
		Stop:  scancycle.Stop,
		Status: func() (string, error) {
			return scancycle.Current().String(), nil
		},
		Reload: func() error {
			reloadPlugins(log, config.PluginDescriptors)
			return nil
		},
	})
	if err := cmdSrv.Start(); nil != err {
		log.Criticalf("command socket failed to start: %s", err)
		exitwithstatus.Message("command socket failed to start: %s", err)
	}
	defer cmdSrv.Stop()

	if err := scancycle.Start(); nil != err {
		log.Criticalf("scan-cycle start failed: %s", err)
		exitwithstatus.Message("scan-cycle start failed: %s", err)
	}
	pluginhost.Start()

	if 0 == len(options["quiet"]) {
		os.Stdout.WriteString("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…\n")
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	sink.Emit("info", "main", "shutting down")

	_ = scancycle.Stop()
	log.Info("shutting down…")
}

func reloadPlugins(log *logger.L, path string) {
	f, err := os.Open(path)
	if nil != err {
		log.Errorf("reload: cannot open plugin descriptors: %s", err)
		return
	}
	defer f.Close()
	if err := pluginhost.Reload(f); nil != err {
		log.Errorf("reload failed: %s", err)
		return
	}
	pluginhost.Start()
	log.Info("plugin host reloaded")
}
