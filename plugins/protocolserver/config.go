// Package protocolserver is the reference plugin: a TCP server
// speaking a compact, S7-shaped binary protocol that exposes process
// inputs, process outputs, markers and numbered data blocks to remote
// clients, backed by the host's image tables and journal.
package protocolserver

import (
	"encoding/json"
	"io"

	"github.com/scanworks/plcruntime/internal/fault"
	"github.com/scanworks/plcruntime/internal/imagetable"
)

const (
	minPDUSize = 240
	maxPDUSize = 960

	defaultPort          = 102
	defaultMaxClients    = 32
	defaultSendTimeoutMs = 3000
	defaultRecvTimeoutMs = 3000
	defaultPingTimeoutMs = 10000
	defaultPDUSize       = 480
)

// MappingType names the shape of a buffer binding: plain word/byte
// addressing, or bit addressing for bool-backed areas.
type MappingType string

const (
	MappingWord MappingType = "word"
	MappingBit  MappingType = "bit"
)

// BufferMapping binds an area to an image-table family starting at a
// given index.
type BufferMapping struct {
	Type          string `json:"type"`
	StartBuffer   int    `json:"start_buffer"`
	BitAddressing bool   `json:"bit_addressing"`
}

// DataBlock is one user-numbered data block.
type DataBlock struct {
	DBNumber  int           `json:"db_number"`
	SizeBytes int           `json:"size_bytes"`
	Mapping   BufferMapping `json:"mapping"`
}

// SystemArea is one of the three fixed system areas (PE, PA, MK).
type SystemArea struct {
	Enabled   bool          `json:"enabled"`
	SizeBytes int           `json:"size_bytes"`
	Mapping   BufferMapping `json:"mapping"`
}

// ServerConfig holds the listener's own settings.
type ServerConfig struct {
	Enabled       bool   `json:"enabled"`
	BindAddress   string `json:"bind_address"`
	Port          int    `json:"port"`
	MaxClients    int    `json:"max_clients"`
	SendTimeoutMs int    `json:"send_timeout_ms"`
	RecvTimeoutMs int    `json:"recv_timeout_ms"`
	PingTimeoutMs int    `json:"ping_timeout_ms"`
	PDUSize       int    `json:"pdu_size"`
}

// Identity holds the strings returned in protocol identity queries.
type Identity struct {
	Name         string `json:"name"`
	ModuleType   string `json:"module_type"`
	SerialNumber string `json:"serial_number"`
	Copyright    string `json:"copyright"`
	ModuleName   string `json:"module_name"`
}

// LoggingConfig is the event filter for this plugin instance.
type LoggingConfig struct {
	LogConnections bool `json:"log_connections"`
	LogDataAccess  bool `json:"log_data_access"`
	LogErrors      bool `json:"log_errors"`
}

// SystemAreas bundles the three fixed areas.
type SystemAreas struct {
	PE SystemArea `json:"pe"`
	PA SystemArea `json:"pa"`
	MK SystemArea `json:"mk"`
}

// Config is the complete per-plugin JSON configuration.
type Config struct {
	Server      ServerConfig  `json:"server"`
	Identity    Identity      `json:"identity"`
	DataBlocks  []DataBlock   `json:"data_blocks"`
	SystemAreas SystemAreas   `json:"system_areas"`
	Logging     LoggingConfig `json:"logging"`
}

// DefaultConfig returns a config with every documented default and the
// server disabled, matching "on failure, defaults are used ... the
// plugin still starts" with no listener bound.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Enabled:       false,
			BindAddress:   "0.0.0.0",
			Port:          defaultPort,
			MaxClients:    defaultMaxClients,
			SendTimeoutMs: defaultSendTimeoutMs,
			RecvTimeoutMs: defaultRecvTimeoutMs,
			PingTimeoutMs: defaultPingTimeoutMs,
			PDUSize:       defaultPDUSize,
		},
	}
}

// LoadConfig decodes JSON from r. On any parse or validation failure
// it returns DefaultConfig() alongside the error; the caller logs a
// warning and starts the plugin with defaults rather than aborting.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	if err := json.NewDecoder(r).Decode(&cfg); nil != err {
		return DefaultConfig(), fault.ErrConfigurationRejected
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); nil != err {
		return DefaultConfig(), err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if "" == cfg.Server.BindAddress {
		cfg.Server.BindAddress = "0.0.0.0"
	}
	if 0 == cfg.Server.MaxClients {
		cfg.Server.MaxClients = defaultMaxClients
	}
	if 0 == cfg.Server.SendTimeoutMs {
		cfg.Server.SendTimeoutMs = defaultSendTimeoutMs
	}
	if 0 == cfg.Server.RecvTimeoutMs {
		cfg.Server.RecvTimeoutMs = defaultRecvTimeoutMs
	}
	if 0 == cfg.Server.PingTimeoutMs {
		cfg.Server.PingTimeoutMs = defaultPingTimeoutMs
	}
	if 0 == cfg.Server.PDUSize {
		cfg.Server.PDUSize = defaultPDUSize
	}
}

// Validate rejects a zero port, an out-of-range PDU size, a client cap
// outside 1..1024, a duplicate data-block number, an unknown mapping
// type, and a negative start_buffer.
func Validate(cfg Config) error {
	if 0 == cfg.Server.Port {
		return fault.ErrInvalidPort
	}
	if cfg.Server.PDUSize < minPDUSize || cfg.Server.PDUSize > maxPDUSize {
		return fault.ErrInvalidPDUSize
	}
	if cfg.Server.MaxClients < 1 || cfg.Server.MaxClients > 1024 {
		return fault.ErrTooManyClients
	}

	seen := map[int]bool{}
	for _, db := range cfg.DataBlocks {
		if seen[db.DBNumber] {
			return fault.ErrDuplicateDataBlock
		}
		seen[db.DBNumber] = true
		if err := validateMapping(db.Mapping); nil != err {
			return err
		}
	}
	for _, area := range []SystemArea{cfg.SystemAreas.PE, cfg.SystemAreas.PA, cfg.SystemAreas.MK} {
		if !area.Enabled {
			continue
		}
		if err := validateMapping(area.Mapping); nil != err {
			return err
		}
	}
	return nil
}

func validateMapping(m BufferMapping) error {
	if m.StartBuffer < 0 {
		return fault.ErrNegativeStartBuffer
	}
	if _, err := bufferTypeFromMapping(m); nil != err {
		return err
	}
	return nil
}

// bufferTypeFromMapping resolves a mapping's JSON type string to an
// imagetable.BufferType. Accepted names mirror the fourteen families.
func bufferTypeFromMapping(m BufferMapping) (imagetable.BufferType, error) {
	switch m.Type {
	case "bool_input":
		return imagetable.BoolInput, nil
	case "bool_output":
		return imagetable.BoolOutput, nil
	case "bool_memory":
		return imagetable.BoolMemory, nil
	case "byte_input":
		return imagetable.ByteInput, nil
	case "byte_output":
		return imagetable.ByteOutput, nil
	case "int_input":
		return imagetable.IntInput, nil
	case "int_output":
		return imagetable.IntOutput, nil
	case "int_memory":
		return imagetable.IntMemory, nil
	case "dint_input":
		return imagetable.DIntInput, nil
	case "dint_output":
		return imagetable.DIntOutput, nil
	case "dint_memory":
		return imagetable.DIntMemory, nil
	case "lint_input":
		return imagetable.LIntInput, nil
	case "lint_output":
		return imagetable.LIntOutput, nil
	case "lint_memory":
		return imagetable.LIntMemory, nil
	default:
		return 0, fault.ErrInvalidMappingType
	}
}
