package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KOMKZ/go-yogan-confenv/config"
	"github.com/KOMKZ/go-yogan-confenv/configcenter"
	"github.com/KOMKZ/go-yogan-confenv/environment"
	"github.com/KOMKZ/go-yogan-confenv/flagx"
	"github.com/KOMKZ/go-yogan-confenv/logger"
	"github.com/KOMKZ/go-yogan-confenv/urlx"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type globalFlags struct {
	systemProps    []string
	externals      []string
	propertiesFile string
	verbose        bool

	ccProtocol string
	ccAddress  string
	ccAppName  string
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringArrayVarP(&g.systemProps, "define", "D", nil, "system property key=value (repeatable)")
	fs.StringArrayVar(&g.externals, "external", nil, "external configuration key=value (repeatable)")
	fs.StringVar(&g.propertiesFile, "properties", "", "properties file (default: $"+config.PropertiesFileEnv+" or "+config.DefaultPropertiesFile+")")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "log to stdout")
	fs.StringVar(&g.ccProtocol, "config-center", "", "config center protocol (memory, etcd, redis, consul)")
	fs.StringVar(&g.ccAddress, "config-center-address", "", "config center address")
	fs.StringVar(&g.ccAppName, "app-name", "", "application name used for the app config file")
}

// newEnvironment builds the environment described by the flags and applies the external configuration
func (g *globalFlags) newEnvironment(ctx context.Context) (*environment.Environment, error) {
	log := logger.NewNop()
	if g.verbose {
		log = logger.GetLogger("confenv")
	}

	system := config.NewSystemProperties()
	for _, raw := range g.systemProps {
		k, v, err := config.ParseSystemProperty(raw)
		if err != nil {
			return nil, err
		}
		system.Put(k, v)
	}
	if g.propertiesFile != "" {
		system.Put(config.PropertiesFileKey, g.propertiesFile)
	}

	env := environment.New(environment.WithLogger(log), environment.WithSystemProperties(system))

	if g.ccProtocol != "" {
		cc := configcenter.NewConfig()
		cc.Protocol = g.ccProtocol
		cc.Address = g.ccAddress
		cc.AppName = g.ccAppName
		env.SetConfigCenter(cc)
	}

	externals := make(map[string]string, len(g.externals))
	for _, raw := range g.externals {
		k, v, err := config.ParseSystemProperty(raw)
		if err != nil {
			return nil, err
		}
		externals[k] = v
	}
	if len(externals) > 0 || g.ccProtocol != "" {
		if err := env.SetExternalConfiguration(ctx, externals); err != nil {
			return nil, err
		}
	}

	log.DebugCtx(ctx, "environment ready",
		zap.Int("system_properties", system.Len()), zap.Int("externals", len(externals)))
	return env, nil
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "confenv",
		Short:         "Resolve configuration across properties, system, external and dynamic origins",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	g.register(root.PersistentFlags())
	root.AddCommand(newGetCmd(g), newRuntimeCmd(g), newHealthCmd(g))
	return root
}

type getOptions struct {
	Prefix string `flag:"prefix" usage:"key prefix, e.g. dubbo.protocols"`
	ID     string `flag:"id" usage:"configuration id under the prefix"`
}

func newGetCmd(g *globalFlags) *cobra.Command {
	var opts getOptions
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print KEY from the startup composite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flagx.ParseFlags(cmd, &opts); err != nil {
				return err
			}
			env, err := g.newEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			return printValue(cmd, env.StartupCompositeConf(opts.Prefix, opts.ID), args[0])
		},
	}
	mustBind(cmd, &opts)
	return cmd
}

type runtimeOptions struct {
	Method string `flag:"method" usage:"invoked method name"`
}

func newRuntimeCmd(g *globalFlags) *cobra.Command {
	var opts runtimeOptions
	cmd := &cobra.Command{
		Use:   "runtime URL KEY",
		Short: "Print KEY from the runtime composite of the call described by URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flagx.ParseFlags(cmd, &opts); err != nil {
				return err
			}
			u, err := urlx.Parse(args[0])
			if err != nil {
				return err
			}
			env, err := g.newEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			return printValue(cmd, env.RuntimeCompositeConf(u, opts.Method), args[1])
		},
	}
	mustBind(cmd, &opts)
	return cmd
}

type healthOptions struct {
	Timeout time.Duration `flag:"timeout" default:"5s" usage:"overall check timeout"`
}

func newHealthCmd(g *globalFlags) *cobra.Command {
	var opts healthOptions
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the remote stores of the active dynamic configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flagx.ParseFlags(cmd, &opts); err != nil {
				return err
			}
			env, err := g.newEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer env.DynamicLoader().Reset()

			report := env.HealthCheck(cmd.Context(), opts.Timeout)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if !report.IsHealthy() && !report.IsDegraded() {
				return fmt.Errorf("configuration environment is %s", report.Status)
			}
			return nil
		},
	}
	mustBind(cmd, &opts)
	return cmd
}

// mustBind panics on malformed option tags
func mustBind(cmd *cobra.Command, opts interface{}) {
	if err := flagx.BindFlags(cmd, opts); err != nil {
		panic(err)
	}
}

func printValue(cmd *cobra.Command, cfg config.Configuration, key string) error {
	v, ok := cfg.GetProperty(key)
	if !ok {
		return fmt.Errorf("key %q not found", key)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), v)
	return err
}
