package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by LoadEnv.
const (
	EnvRecord      = "AHBSIM_RECORD"
	EnvMonitorPort = "AHBSIM_MONITOR_PORT"
	EnvOutput      = "AHBSIM_OUTPUT"
)

// Env holds the defaults that come from the environment. Command line flags
// override them.
type Env struct {
	Record      bool
	MonitorPort int
	Output      string
}

// LoadEnv loads the given .env files, or .env when none is given, and reads
// the variables. Missing files are skipped. Variables that are already set
// win over the files.
func LoadEnv(files ...string) (Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	return ReadEnv()
}

// ReadEnv reads the variables without loading any file.
func ReadEnv() (Env, error) {
	env := Env{Output: os.Getenv(EnvOutput)}

	if v := os.Getenv(EnvRecord); v != "" {
		record, err := strconv.ParseBool(v)
		if err != nil {
			return Env{}, fmt.Errorf("%s: %w", EnvRecord, err)
		}

		env.Record = record
	}

	if v := os.Getenv(EnvMonitorPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Env{}, fmt.Errorf("%s: %w", EnvMonitorPort, err)
		}

		if port < 0 || port > 65535 {
			return Env{}, fmt.Errorf("%s: port %d out of range", EnvMonitorPort, port)
		}

		env.MonitorPort = port
	}

	return env, nil
}
