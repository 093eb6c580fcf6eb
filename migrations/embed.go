// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migrations embeds the versioned schema for every supported store.
package migrations

import "embed"

// Postgres holds golang-migrate files (NNNNNN_name.up.sql / .down.sql).
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite holds goose files annotated with +goose Up / +goose Down.
//
//go:embed sqlite/*.sql
var SQLite embed.FS
