// Package history keeps a sqlite ledger of build runs.
//
// Every invocation that touches a project records a run, and every unit a
// stage visits records its outcome. The ledger is informational: builds decide
// what to regenerate from the state file alone, and a missing or unwritable
// history database never fails a build.
package history
