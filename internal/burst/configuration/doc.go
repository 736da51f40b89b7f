/*
Package configuration defines the input configuration for the burst-elastic load generator.

burst-elastic drives an Elasticsearch-compatible indexing service with a constant stream of bulk requests to measure
sustained indexing throughput. Parallelism is split into two independent knobs: the number of CPU cores that each
host a pinned worker, and the number of scheduler threads inside each of those workers.

# Configuration Structure

The main configuration type is Config, which defines:

  - The target url and the parallelism knobs (coresNum, threadNum, chunkSize)
  - Index configuration (name, shard and replica counts used by the bootstrap check)
  - Report configuration (time-sampled or interval-based progress output)
  - Metrics configuration (Prometheus endpoint)
  - Logging configuration

# Example YAML Configuration

	url: localhost:9200
	threadNum: 2
	coresNum: 4
	chunkSize: 100
	requestTimeout: 30s
	index:
	  name: test
	  shards: 3
	  replicas: 0
	  bootstrap: true
	  bootstrapAttempts: 1
	  bootstrapRetryDelay: 1s
	report:
	  interval: 0s
	  sampleModulus: 10s
	metrics:
	  port: 9090
	logging:
	  level: info
	  format: text

Values given on the command line take precedence over environment variables (BURST_*), which take precedence over
the config file.

# Validation

Struct tags cover simple bounds and are checked by the common config loader. Config.Validate adds the checks that
tags cannot express, such as index naming rules and the relationship between reporting options.
*/
package configuration
