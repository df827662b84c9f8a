// Package runstore persists the batch run ledger in SQLite.
//
// Every batch command opens a run, records one outcome per source file (and
// one row per scored transcript for WER runs), then finishes the run with
// aggregate counts. The schema is embedded and version-checked on open; a
// version mismatch asks the operator to delete the database rather than
// migrating in place.
package runstore
