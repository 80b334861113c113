// Package migrations carries the numbered schema scripts.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
