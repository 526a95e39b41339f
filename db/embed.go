// Package db embeds the SQL schema. The repository layer applies it at
// server startup and the seed command applies it before loading fixtures.
package db

import _ "embed"

//go:embed migrations/001_schema.sql
var Schema string
