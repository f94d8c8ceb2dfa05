// Package daemonconfig decodes the top-level runtime configuration
// file: where the control program and plugin descriptor live, the
// well-known state directory, and the logging sink.
package daemonconfig

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"
)

const (
	defaultLogDirectory = "log"
	defaultLogFile      = "plcd.log"
	defaultLogSize      = 1024 * 1024
	defaultLogCount     = 10
)

// LoglevelMap mirrors the host's own per-component log level map.
type LoglevelMap map[string]string

var defaultLogLevels = LoglevelMap{
	logger.DefaultTag: "info",
}

// Configuration is the root of the daemon's JSON configuration file.
type Configuration struct {
	DataDirectory     string               `json:"data_directory"`
	PidFile           string               `json:"pidfile"`
	ControlProgram    string               `json:"control_program"`
	PluginDescriptors string               `json:"plugin_descriptors"`
	CommandSocket     string               `json:"command_socket"`
	WatchdogSocket    string               `json:"watchdog_socket"`
	LogSinkSocket     string               `json:"log_sink_socket"`
	Logging           logger.Configuration `json:"logging"`
}

// Load reads and decodes path, filling in the same defaults the host
// daemon applies for anything the file omits.
func Load(path string) (*Configuration, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if nil != err {
		return nil, err
	}
	dataDirectory := filepath.Dir(abs)

	config := &Configuration{
		DataDirectory:     dataDirectory,
		ControlProgram:    filepath.Join(dataDirectory, "controlprogram.so"),
		PluginDescriptors: filepath.Join(dataDirectory, "plugins.conf"),
		CommandSocket:     filepath.Join(dataDirectory, "plcd-command.sock"),
		WatchdogSocket:    filepath.Join(dataDirectory, "plcd-watchdog.sock"),
		LogSinkSocket:     filepath.Join(dataDirectory, "plcd-logsink.sock"),
		Logging: logger.Configuration{
			Directory: filepath.Join(dataDirectory, defaultLogDirectory),
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	f, err := os.Open(abs)
	if nil != err {
		return nil, err
	}
	defer f.Close()

	decoder := json.NewDecoder(f)
	if err := decoder.Decode(config); nil != err {
		return nil, err
	}
	return config, nil
}
