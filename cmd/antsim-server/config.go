package main

import (
	"flag"
	"log"
	"os"
	"strconv"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Addr               string
	DefaultRunID       string
	ScenarioFile       string
	SnapshotDir        string
	SnapshotEveryTicks int
	LogLevel           string
}

// configResolver defines how to resolve a single configuration value from
// a CLI flag, falling back to an environment variable, falling back to a
// default.
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

// loadServerConfig loads server configuration from CLI flags and
// environment variables. To add a new option, add a resolver to the table.
func loadServerConfig() ServerConfig {
	cfg := ServerConfig{}

	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "ANTSIM_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "run-id",
			envVarName:  "ANTSIM_RUN_ID",
			defaultVal:  "default",
			description: "run ID for the scenario loaded at startup",
			setter:      func(c *ServerConfig, v string) { c.DefaultRunID = v },
		},
		{
			flagName:    "scenario-file",
			envVarName:  "ANTSIM_SCENARIO_FILE",
			defaultVal:  "",
			description: "optional path to a scenario config file to load at startup",
			setter:      func(c *ServerConfig, v string) { c.ScenarioFile = v },
		},
		{
			flagName:    "snapshot-dir",
			envVarName:  "ANTSIM_SNAPSHOT_DIR",
			defaultVal:  "./data",
			description: "directory where run snapshots are stored",
			setter:      func(c *ServerConfig, v string) { c.SnapshotDir = v },
		},
		{
			flagName:    "snapshot-every-ticks",
			envVarName:  "ANTSIM_SNAPSHOT_EVERY_TICKS",
			defaultVal:  "1000",
			description: "how often to write snapshots (in ticks); 0 disables periodic snapshots",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.Atoi(v); err == nil {
					c.SnapshotEveryTicks = val
				} else {
					log.Printf("invalid value for snapshot-every-ticks: %s, using default 1000", v)
					c.SnapshotEveryTicks = 1000
				}
			},
		},
		{
			flagName:    "log-level",
			envVarName:  "ANTSIM_LOG_LEVEL",
			defaultVal:  "info",
			description: "log level: debug, info, warn or error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
	}

	flagValues := make(map[string]*string, len(resolvers))
	for _, r := range resolvers {
		flagValues[r.flagName] = flag.String(r.flagName, "", r.description)
	}
	flag.Parse()

	for _, r := range resolvers {
		value := *flagValues[r.flagName]
		if value == "" {
			value = os.Getenv(r.envVarName)
		}
		if value == "" {
			value = r.defaultVal
		}
		r.setter(&cfg, value)
	}

	return cfg
}
