package daemonconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsRelativeToConfigFileDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plcd.conf")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, dir, config.DataDirectory)
	assert.Equal(t, filepath.Join(dir, "controlprogram.so"), config.ControlProgram)
	assert.Equal(t, filepath.Join(dir, "plugins.conf"), config.PluginDescriptors)
	assert.Equal(t, filepath.Join(dir, "log"), config.Logging.Directory)
}

func TestLoadOverridesDefaultsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plcd.conf")
	content := `{"control_program": "/opt/plc/program.so", "command_socket": "/run/plcd/command.sock"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/plc/program.so", config.ControlProgram)
	assert.Equal(t, "/run/plcd/command.sock", config.CommandSocket)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.conf"))
	assert.Error(t, err)
}
