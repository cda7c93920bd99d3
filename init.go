package algotick

import (
	"os"
	"strconv"

	"github.com/quantforge/algotick/core"
	"github.com/quantforge/algotick/logger/zerolog"
)

// DefaultLog is the package-wide logger used by engines without an
// explicit WithLogger option.
var DefaultLog core.Logger

const (
	defaultLogLevel      = "info"
	defaultLogTimeFormat = "2006-01-02 15:04:05"
	defaultLogColored    = "true"
	defaultLogJSON       = "false"
)

// Environment variable names
const (
	envLogLevel      = "ALGOTICK_LOG_LEVEL"
	envLogTimeFormat = "ALGOTICK_LOG_TIME_FORMAT"
	envLogColor      = "ALGOTICK_LOG_COLOR"
	envLogJSON       = "ALGOTICK_LOG_JSON"
)

func init() {
	log, err := initLogger()
	if err != nil {
		panic(err)
	}
	DefaultLog = zerolog.NewAdapter(log.Logger)
}

// initLogger creates the default logger from environment variables.
func initLogger() (*zerolog.ZerologLogger, error) {
	logLevel := getEnvWithDefault(envLogLevel, defaultLogLevel)
	logTimeFormat := getEnvWithDefault(envLogTimeFormat, defaultLogTimeFormat)

	logColored, err := parseBoolEnv(envLogColor, defaultLogColored)
	if err != nil {
		return nil, err
	}
	logJSON, err := parseBoolEnv(envLogJSON, defaultLogJSON)
	if err != nil {
		return nil, err
	}

	return zerolog.NewZerolog(logLevel, logTimeFormat, logColored, logJSON)
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseBoolEnv(key, defaultValue string) (bool, error) {
	return strconv.ParseBool(getEnvWithDefault(key, defaultValue))
}
