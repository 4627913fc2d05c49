// Package db carries the embedded database schema.
package db

import _ "embed"

// Schema is the complete DDL for the intake tables, written to be applied
// repeatedly as one idempotent script.
//
//go:embed migrations/001_schema.sql
var Schema string
