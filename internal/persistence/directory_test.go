package persistence

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDirectoryCreatesMissingParents(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "state", "nested")

	if err := EnsureDirectory(target); nil != err {
		t.Fatalf("ensure directory: %s", err)
	}
	info, err := os.Stat(target)
	if nil != err {
		t.Fatalf("stat: %s", err)
	}
	if !info.IsDir() {
		t.Fatal("expected a directory")
	}
}

func TestEnsureDirectoryIdempotent(t *testing.T) {
	target := t.TempDir()
	if err := EnsureDirectory(target); nil != err {
		t.Fatalf("first call: %s", err)
	}
	if err := EnsureDirectory(target); nil != err {
		t.Fatalf("second call should be a no-op: %s", err)
	}
}

func TestReadEnvFileParsesKeyValuePairs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\n\nFOO=bar\nBAZ = qux\n"
	if err := os.WriteFile(path, []byte(content), 0644); nil != err {
		t.Fatalf("write fixture: %s", err)
	}

	env, err := ReadEnvFile(path)
	if nil != err {
		t.Fatalf("read env: %s", err)
	}
	if "bar" != env["FOO"] || "qux" != env["BAZ"] {
		t.Fatalf("unexpected env: %+v", env)
	}
}
