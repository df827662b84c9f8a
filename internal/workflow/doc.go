// Package workflow runs vadscribe's batch stages against a loaded
// configuration.
//
// Each exported command (Prepare, Chunk, ASR, Pipeline, Watch, the WER and
// align commands) opens one stageexec session, so every invocation gets a run
// id in the ledger, per-file outcomes, metrics and, for stages that write the
// chunks directory, the workspace lock. The CLI in cmd/vadscribe is a thin
// layer over these functions.
package workflow
