// Package migrations схема базы данных, встроенная в бинарник для cmd/migrate
package migrations

import "embed"

// FS SQL миграции в формате golang-migrate (NNNNNN_name.up.sql / .down.sql)
//
//go:embed *.sql
var FS embed.FS
