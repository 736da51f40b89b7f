package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ssfdust/burst-elastic/internal/burst/configuration"
	"github.com/ssfdust/burst-elastic/internal/burst/orchestrator"
	"github.com/ssfdust/burst-elastic/internal/common/bursterrors"
	commonconfig "github.com/ssfdust/burst-elastic/internal/common/config"
	"github.com/ssfdust/burst-elastic/internal/common/logging"
)

const (
	envPrefix         = "BURST"
	defaultConfigName = ".burst-elastic"
)

// RunFunc executes a load test with a fully loaded and validated configuration.
type RunFunc func(ctx context.Context, config configuration.Config, registry *prometheus.Registry) error

// RootCmd is the root Cobra command that gets called from the main func.
func RootCmd() *cobra.Command {
	return rootCmd(runLoadTest)
}

func rootCmd(run RunFunc) *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "burst-elastic [flags] <url>",
		Short: "A simple tool to benchmark elasticsearch.",
		Long: `
A simple tool to benchmark elasticsearch.

Random documents are posted to the bulk api of the target as fast as the configured
parallelism allows, and the number of completed bulk requests is printed as "called N".

Every flag can also be set through a BURST_ prefixed environment variable or a yaml config
file passed with --config or picked from $HOME/.burst-elastic.yaml, for example:

url: localhost:9200
threadNum: 2
coresNum: 4
chunkSize: 100
index:
  name: test
metrics:
  port: 9090
`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(v, cfgFile, args)
			if err != nil {
				return err
			}
			registry := prometheus.NewRegistry()
			err = logging.ConfigureApplicationLogging(config.Logging.Level, config.Logging.Format, logging.NewPrometheusHook(registry))
			if err != nil {
				return errors.WithStack(&bursterrors.ErrInvalidArgument{
					Name:    "logging",
					Value:   config.Logging,
					Message: err.Error(),
				})
			}
			return run(cmd.Context(), config, registry)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.burst-elastic.yaml)")
	addFlags(cmd.Flags())
	bindFlags(v, cmd.Flags())
	return cmd
}

func addFlags(flags *pflag.FlagSet) {
	defaults := configuration.Default()
	flags.IntP("thread-num", "t", defaults.ThreadNum, "number of threads for each core")
	flags.IntP("cores-num", "c", defaults.CoresNum, "number of cores")
	flags.IntP("chunk-size", "s", defaults.ChunkSize, "size of each chunk to post to bulk api")
	flags.String("index", defaults.Index.Name, "index to write documents to")
	flags.Bool("bootstrap", defaults.Index.Bootstrap, "create the index before starting when it does not exist")
	flags.Duration("request-timeout", defaults.RequestTimeout, "timeout for each bulk request, 0 disables it")
	flags.Duration("report-interval", defaults.Report.Interval, "print progress on this interval instead of sampling completions")
	flags.Uint16("metrics-port", defaults.Metrics.Port, "port to expose prometheus metrics on, 0 disables it")
	flags.String("log-level", defaults.Logging.Level, "log level")
	flags.String("log-format", string(defaults.Logging.Format), "log format, text or json")
}

var flagKeys = map[string]string{
	"thread-num":      "threadNum",
	"cores-num":       "coresNum",
	"chunk-size":      "chunkSize",
	"index":           "index.name",
	"bootstrap":       "index.bootstrap",
	"request-timeout": "requestTimeout",
	"report-interval": "report.interval",
	"metrics-port":    "metrics.port",
	"log-level":       "logging.level",
	"log-format":      "logging.format",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func setDefaults(v *viper.Viper) {
	defaults := configuration.Default()
	v.SetDefault("url", "")
	v.SetDefault("threadNum", defaults.ThreadNum)
	v.SetDefault("coresNum", defaults.CoresNum)
	v.SetDefault("chunkSize", defaults.ChunkSize)
	v.SetDefault("requestTimeout", defaults.RequestTimeout)
	v.SetDefault("index.name", defaults.Index.Name)
	v.SetDefault("index.shards", defaults.Index.Shards)
	v.SetDefault("index.replicas", defaults.Index.Replicas)
	v.SetDefault("index.bootstrap", defaults.Index.Bootstrap)
	v.SetDefault("index.bootstrapAttempts", defaults.Index.BootstrapAttempts)
	v.SetDefault("index.bootstrapRetryDelay", defaults.Index.BootstrapRetryDelay)
	v.SetDefault("report.interval", defaults.Report.Interval)
	v.SetDefault("report.sampleModulus", defaults.Report.SampleModulus)
	v.SetDefault("metrics.port", defaults.Metrics.Port)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", string(defaults.Logging.Format))
}

// loadConfig merges, in increasing precedence, defaults, the config file, BURST_ environment variables, flags and
// the positional url.
func loadConfig(v *viper.Viper, cfgFile string, args []string) (configuration.Config, error) {
	setDefaults(v)
	if err := commonconfig.ReadConfigFile(v, cfgFile, defaultConfigName); err != nil {
		return configuration.Config{}, err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if len(args) == 1 {
		v.Set("url", args[0])
	}

	var config configuration.Config
	if err := commonconfig.Load(v, &config); err != nil {
		return config, errors.WithStack(&bursterrors.ErrInvalidArgument{
			Name:    "config",
			Value:   v.ConfigFileUsed(),
			Message: errors.Cause(err).Error(),
		})
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func runLoadTest(ctx context.Context, config configuration.Config, registry *prometheus.Registry) error {
	return orchestrator.NewRunner(config, registry, os.Stdout).Run(ctx)
}
