package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/KirkDiggler/room-server/internal/errors"
)

// envPrefix namespaces the environment variables the server reads: the
// flag --redis-addrs is ROOMSERVER_REDIS_ADDRS
const envPrefix = "ROOMSERVER"

// envAliases keeps variable names that predate the flag they feed
var envAliases = map[string]string{
	"port": "ROOMSERVER_GRPC_PORT",
}

// bindEnv fills every flag the command line left alone from its
// environment variable. Flags given on the command line win.
func bindEnv(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := cmd.Flags()
	if err := v.BindPFlags(flags); err != nil {
		return errors.Wrap(err, "failed to bind flags")
	}
	for name, env := range envAliases {
		if flags.Lookup(name) == nil {
			continue
		}
		if err := v.BindEnv(name, env); err != nil {
			return errors.Wrapf(err, "failed to bind %s", env)
		}
	}

	vb := errors.NewValidationBuilder()
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := f.Value.Set(v.GetString(f.Name)); err != nil {
			vb.InvalidField(envName(f.Name), err.Error())
		}
	})
	return vb.Build()
}

func envName(flag string) string {
	if env, ok := envAliases[flag]; ok {
		return env
	}
	return fmt.Sprintf("%s_%s", envPrefix, strings.ToUpper(strings.ReplaceAll(flag, "-", "_")))
}
