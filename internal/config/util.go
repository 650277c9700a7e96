package config

import (
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// parse parses the environment variables and returns the configuration.
// Explicitly passed envs take precedence over the process environment.
func parse[T any](envs ...string) (*T, error) {
	merged := toMap(os.Environ())
	for k, v := range toMap(envs) {
		merged[k] = v
	}

	c, err := env.ParseAsWithOptions[T](env.Options{
		Environment: merged,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &c, nil
}

// toMap converts "KEY=VALUE" pairs to a map.
func toMap(envs []string) map[string]string {
	r := map[string]string{}
	for _, e := range envs {
		p := strings.SplitN(e, "=", 2)
		if len(p) == 2 {
			r[p[0]] = p[1]
		}
	}
	return r
}
