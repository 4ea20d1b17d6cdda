package util

import (
	"os"
	"strings"
)

// GetEnvironmentVariables returns the variables starting with prefix, keyed
// by the rest of their name. Empty values are left out.
func GetEnvironmentVariables(prefix string) map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)
		if len(pair) != 2 || pair[1] == "" {
			continue
		}

		if key, found := strings.CutPrefix(pair[0], prefix); found {
			environmentVariables[key] = pair[1]
		}
	}

	return environmentVariables
}
