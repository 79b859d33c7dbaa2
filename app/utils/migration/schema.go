package migration

import "embed"

// Schema holds the service's SQL migrations
//
//go:embed sql/*.sql
var Schema embed.FS
