package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envFiles are read in order; a key from an earlier file shadows later ones.
var envFiles = []string{".env", "cmd/.env"}

// readEnvFiles merges KEY=VALUE pairs from the files that exist. Missing
// files are skipped and malformed files are reported by name.
func readEnvFiles(paths ...string) (map[string]string, []error) {
	merged := map[string]string{}
	var errs []error
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		for k, val := range values {
			if _, seen := merged[k]; !seen {
				merged[k] = val
			}
		}
	}
	return merged, errs
}

// applyEnvFiles layers file values between the built-in defaults and the
// process environment, leaving os.Environ untouched.
func applyEnvFiles(v *viper.Viper, values map[string]string) {
	for k, val := range values {
		v.SetDefault(k, val)
	}
}
