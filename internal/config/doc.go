// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package config loads layered process configuration with Koanf v2.
//
// Precedence, lowest to highest: built-in defaults, an optional YAML
// config file (config.yaml, or the path in CONFIG_PATH), then PB_-prefixed
// environment variables. PB_SERVER_ADDR overrides server.addr,
// PB_EVENTSTORE_BUCKET_CAPACITY overrides eventstore.bucket_capacity,
// and so on: the first underscore after the prefix separates the section
// from the key.
package config
