package configuration

import (
	"time"

	"github.com/ssfdust/burst-elastic/internal/common/logging"
)

const (
	DefaultIndexName     = "test"
	DefaultShards        = 3
	DefaultReplicas      = 0
	DefaultThreadNum     = 1
	DefaultCoresNum      = 1
	DefaultChunkSize     = 100
	DefaultSampleModulus = 10 * time.Second

	DefaultBootstrapAttempts   = 1
	DefaultBootstrapRetryDelay = time.Second
)

type Config struct {
	// Target service. A plain host:port gets an http:// scheme.
	Url string `mapstructure:"url" validate:"required"`
	// Scheduler threads started inside every core worker.
	ThreadNum int `mapstructure:"threadNum" validate:"gt=0"`
	// Number of physical cores to run workers on. The first coresNum cores are used.
	CoresNum int `mapstructure:"coresNum" validate:"gt=0"`
	// Documents per bulk request, and also the number of bulk requests in flight per core.
	ChunkSize int `mapstructure:"chunkSize" validate:"gt=0"`
	// Per bulk request timeout. Zero means no timeout.
	RequestTimeout time.Duration `mapstructure:"requestTimeout" validate:"gte=0"`

	Index   IndexConfig   `mapstructure:"index"`
	Report  ReportConfig  `mapstructure:"report"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type IndexConfig struct {
	Name     string `mapstructure:"name" validate:"required"`
	Shards   int    `mapstructure:"shards" validate:"gt=0"`
	Replicas int    `mapstructure:"replicas" validate:"gte=0"`
	// Whether to run the exists/create check before load generation starts.
	Bootstrap bool `mapstructure:"bootstrap"`
	// How many times the check is tried when the target cannot be reached. Unexpected responses are never retried.
	BootstrapAttempts uint `mapstructure:"bootstrapAttempts" validate:"gte=1"`
	// Initial delay between attempts, doubled after each one.
	BootstrapRetryDelay time.Duration `mapstructure:"bootstrapRetryDelay" validate:"gte=0"`
}

type ReportConfig struct {
	// When positive, progress is printed on this period instead of being sampled from completions.
	Interval time.Duration `mapstructure:"interval" validate:"gte=0"`
	// A completion prints progress when the wall clock in milliseconds is a multiple of this.
	SampleModulus time.Duration `mapstructure:"sampleModulus"`
}

type MetricsConfig struct {
	// Port for the Prometheus endpoint. Zero disables it.
	Port uint16 `mapstructure:"port"`
}

type LoggingConfig struct {
	Level  string            `mapstructure:"level" validate:"required"`
	Format logging.LogFormat `mapstructure:"format" validate:"required"`
}

// Default returns a Config carrying every default except the url.
func Default() Config {
	return Config{
		ThreadNum: DefaultThreadNum,
		CoresNum:  DefaultCoresNum,
		ChunkSize: DefaultChunkSize,
		Index: IndexConfig{
			Name:      DefaultIndexName,
			Shards:    DefaultShards,
			Replicas:  DefaultReplicas,
			Bootstrap: true,

			BootstrapAttempts:   DefaultBootstrapAttempts,
			BootstrapRetryDelay: DefaultBootstrapRetryDelay,
		},
		Report: ReportConfig{
			SampleModulus: DefaultSampleModulus,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
	}
}
