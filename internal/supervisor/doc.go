// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package supervisor builds the suture supervision tree for the process.
//
// The tree has two layers: data (durable-log maintenance) and api (HTTP
// server). Failure isolation between layers means a crashing maintenance
// tick never takes the HTTP surface down with it.
package supervisor
