package configuration

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/ssfdust/burst-elastic/internal/common/bursterrors"
)

// Validate checks the constraints that struct tags cannot express.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Url) == "" {
		return invalid("url", c.Url, "url must not be empty")
	}
	if c.ThreadNum <= 0 {
		return invalid("threadNum", c.ThreadNum, "threadNum must be positive")
	}
	if c.CoresNum <= 0 {
		return invalid("coresNum", c.CoresNum, "coresNum must be positive")
	}
	if c.ChunkSize <= 0 {
		return invalid("chunkSize", c.ChunkSize, "chunkSize must be positive")
	}
	if c.RequestTimeout < 0 {
		return invalid("requestTimeout", c.RequestTimeout, "requestTimeout must be non-negative")
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	return c.Report.Validate()
}

func (c IndexConfig) Validate() error {
	if c.Name == "" {
		return invalid("index.name", c.Name, "index name must not be empty")
	}
	if c.Name != strings.ToLower(c.Name) {
		return invalid("index.name", c.Name, "index name must be lowercase")
	}
	if strings.HasPrefix(c.Name, "_") || strings.HasPrefix(c.Name, "-") || strings.HasPrefix(c.Name, "+") {
		return invalid("index.name", c.Name, "index name must not start with '_', '-' or '+'")
	}
	if strings.ContainsAny(c.Name, `\/*?"<>| ,#:`) {
		return invalid("index.name", c.Name, "index name contains a forbidden character")
	}
	if c.Shards <= 0 {
		return invalid("index.shards", c.Shards, "shards must be positive")
	}
	if c.Replicas < 0 {
		return invalid("index.replicas", c.Replicas, "replicas must be non-negative")
	}
	return nil
}

func (c ReportConfig) Validate() error {
	if c.Interval < 0 {
		return invalid("report.interval", c.Interval, "interval must be non-negative")
	}
	if c.Interval == 0 && c.SampleModulus.Milliseconds() <= 0 {
		return invalid("report.sampleModulus", c.SampleModulus, "sampleModulus must be at least 1ms when interval reporting is off")
	}
	return nil
}

func invalid(name string, value any, message string) error {
	return errors.WithStack(&bursterrors.ErrInvalidArgument{
		Name:    name,
		Value:   value,
		Message: message,
	})
}
