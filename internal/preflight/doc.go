// Package preflight provides readiness checks for the directories, external
// programs and services vadscribe depends on.
//
// These checks run in two contexts:
//   - Batch commands call RunAll before touching any file. If a required
//     check fails, the command stops instead of failing every file.
//   - The "vadscribe doctor" command runs every check, including the ones
//     that reach the network, and prints the results as a table.
package preflight
