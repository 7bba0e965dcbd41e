// Package archive stores conversion history in a local SQLite
// database: one record per run with its per-page outcomes. The
// archive is advisory; conversion never fails because archiving did.
package archive
