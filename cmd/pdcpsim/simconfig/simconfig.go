// Copyright 2021-2024 hhorai. All rights reserved.
// Use of this source code is governed by a MIT license that can be found
// in the LICENSE file.

// Package simconfig loads the pdcpsim CLI's configuration from
// environment variables, an optional YAML file and built-in defaults, in
// that precedence order (the same layering dittofs' pkg/config uses). No
// command-line flag sets a configuration value; the --config flag only
// names the YAML file.
package simconfig

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the pdcpsim run configuration: one bearer, two entities
// (gNB side and UE side) sharing a key and SN size.
type Config struct {
	RBID        uint32 `mapstructure:"rb_id"`
	SNSize      int    `mapstructure:"sn_size"`
	TReordering uint64 `mapstructure:"t_reordering"`

	CipheringAlgorithm int    `mapstructure:"ciphering_algorithm"`
	CipheringKeyHex    string `mapstructure:"ciphering_key"`

	// SDUCount is how many demo SDUs to push through the pair.
	SDUCount int `mapstructure:"sdu_count"`
	// ReorderEvery, when > 0, swaps the PDU whose SDU index is a multiple
	// of N with the PDU after it before delivering them to RX, to exercise
	// reordering/the timer.
	ReorderEvery int `mapstructure:"reorder_every"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Default returns the configuration used when no file/env/flag overrides it.
func Default() Config {
	return Config{
		RBID:               1,
		SNSize:             12,
		TReordering:        10,
		CipheringAlgorithm: 0,
		SDUCount:           10,
		ReorderEvery:       0,
		LogLevel:           "info",
		LogFormat:          "text",
		MetricsAddr:        "",
	}
}

// Load resolves Config from (in ascending precedence) defaults, an
// optional YAML file at configPath, and PDCPSIM_-prefixed environment
// variables.
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PDCPSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("rb_id", def.RBID)
	v.SetDefault("sn_size", def.SNSize)
	v.SetDefault("t_reordering", def.TReordering)
	v.SetDefault("ciphering_algorithm", def.CipheringAlgorithm)
	v.SetDefault("ciphering_key", def.CipheringKeyHex)
	v.SetDefault("sdu_count", def.SDUCount)
	v.SetDefault("reorder_every", def.ReorderEvery)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("metrics_addr", def.MetricsAddr)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("pdcpsim: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("pdcpsim: unmarshalling config: %w", err)
	}

	return cfg, nil
}
