// Package migrations embeds SQL migration files for the SQLite stores.
package migrations

import "embed"

// Knowledge contains the chunk store migrations.
//
//go:embed knowledge/*.sql
var Knowledge embed.FS

// Support contains the customer support database migrations.
//
//go:embed support/*.sql
var Support embed.FS
