package imagetable_test

import (
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "plcruntime-test-log")
	if nil != err {
		panic(err)
	}

	if err := logger.Initialise(logger.Configuration{
		Directory: dir,
		File:      "test.log",
		Size:      20000,
		Count:     10,
	}); nil != err {
		os.RemoveAll(dir)
		panic(err)
	}

	result := m.Run()

	logger.Finalise()
	os.RemoveAll(dir)
	os.Exit(result)
}
