package util

import (
	"os"
	"strconv"
	"strings"
)

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// EnvironmentFloat reads a float from the environment, ok is false when the
// variable is unset or not a number
func EnvironmentFloat(env map[string]string, name string) (float64, bool) {
	value, exists := env[name]
	if !exists || strings.TrimSpace(value) == "" {
		return 0, false
	}

	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}

	return parsed, true
}
