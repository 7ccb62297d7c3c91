// Package database implements the domain repositories backed by PostgreSQL
// via pgx. One repository per aggregate; all queries use positional
// placeholders and RETURNING so reads and writes share the scan helpers.
package database
