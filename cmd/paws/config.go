// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/paws/pkg/logging"
)

// configValidate validates loaded configuration structs.
var configValidate = validator.New()

// Config is the root configuration, loaded from config.yaml.
type Config struct {
	Store    StoreConfig    `yaml:"store" validate:"required"`
	Curation CurationConfig `yaml:"curation"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// StoreConfig selects and configures the artifact store backend.
type StoreConfig struct {
	// Backend is "memory" or "badger".
	Backend string `yaml:"backend" validate:"oneof=memory badger"`

	// Path is the BadgerDB directory. Required for the badger backend.
	Path string `yaml:"path" validate:"required_if=Backend badger"`

	// SyncWrites enables synchronous disk writes for the badger backend.
	SyncWrites bool `yaml:"sync_writes"`
}

// CurationConfig selects the curation oracle backend.
type CurationConfig struct {
	// Backend is "none", "openai", or "ollama". With "none" curation
	// always uses the deterministic recency fallback.
	Backend string `yaml:"backend" validate:"oneof=none openai ollama"`

	// MaxFiles bounds the fallback selection. Zero keeps the default.
	MaxFiles int `yaml:"max_files" validate:"gte=0"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Dir enables file logging when set. Supports ~ expansion.
	Dir string `yaml:"dir"`

	// JSON switches stderr output to JSON.
	JSON bool `yaml:"json"`

	// Quiet disables stderr output.
	Quiet bool `yaml:"quiet"`
}

// MinLevel maps the configured level name to a logging.Level.
func (c LoggingConfig) MinLevel() logging.Level {
	switch c.Level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// DefaultConfig returns the configuration used when no config.yaml is
// present: a durable local badger store under ~/.paws, no oracle.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Backend:    "badger",
			Path:       "~/.paws/store",
			SyncWrites: true,
		},
		Curation: CurationConfig{Backend: "none"},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Validate checks field constraints on the loaded configuration.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
