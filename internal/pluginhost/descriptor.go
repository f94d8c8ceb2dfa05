package pluginhost

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/scanworks/plcruntime/internal/fault"
)

// Kind selects how a descriptor's path is loaded.
type Kind int

const (
	// KindNative is a compiled Go plugin loaded with buildmode=plugin.
	KindNative Kind = iota
	// KindScripted is a Lua module run in an embedded interpreter.
	KindScripted
)

func parseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "native":
		return KindNative, nil
	case "scripted":
		return KindScripted, nil
	default:
		return 0, fault.ErrConfigurationRejected
	}
}

// Descriptor is one line of the plugin config file: name, path,
// enabled, kind, config_path, env_path.
type Descriptor struct {
	Name       string
	Path       string
	Enabled    bool
	Kind       Kind
	ConfigPath string
	EnvPath    string
}

// ParseDescriptors reads one descriptor per non-comment, non-blank
// line. A line starting with '#' (after leading whitespace) is a
// comment. Malformed lines are skipped rather than aborting the whole
// file; each skipped line adds one error to the returned list, without
// the line's text.
func ParseDescriptors(r io.Reader) ([]Descriptor, []error) {
	var descriptors []Descriptor
	var errs []error

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if "" == line || strings.HasPrefix(line, "#") {
			continue
		}
		d, err := parseDescriptorLine(line)
		if nil != err {
			errs = append(errs, err)
			continue
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, errs
}

func parseDescriptorLine(line string) (Descriptor, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 6 {
		return Descriptor{}, fault.ErrConfigurationRejected
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	enabled, err := strconv.ParseBool(fields[2])
	if nil != err {
		return Descriptor{}, fault.ErrConfigurationRejected
	}

	kind, err := parseKind(fields[3])
	if nil != err {
		return Descriptor{}, err
	}

	return Descriptor{
		Name:       fields[0],
		Path:       fields[1],
		Enabled:    enabled,
		Kind:       kind,
		ConfigPath: fields[4],
		EnvPath:    fields[5],
	}, nil
}
