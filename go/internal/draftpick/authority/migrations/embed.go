// Package migrations embeds the draft_picks schema for each SQL dialect.
package migrations

import "embed"

// FS holds one directory of *.up.sql files per dialect.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
