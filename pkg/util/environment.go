package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// GetEnvironmentInt returns the integer value of key, or defaultValue when it is unset
func GetEnvironmentInt(env map[string]string, key string, defaultValue int) (int, error) {
	value := env[key]
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}

	return n, nil
}

// GetEnvironmentDuration accepts either a Go duration string ("30s") or a plain number of seconds
func GetEnvironmentDuration(env map[string]string, key string, defaultValue time.Duration) (time.Duration, error) {
	value := env[key]
	if value == "" {
		return defaultValue, nil
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}

	return d, nil
}

// ExpandEnvironment replaces $NAME and ${NAME} references with values from env.
// Unknown names expand to an empty string.
func ExpandEnvironment(env map[string]string, value string) string {
	return os.Expand(value, func(name string) string {
		return env[name]
	})
}
