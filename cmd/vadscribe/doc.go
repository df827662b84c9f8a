// Package main hosts the vadscribe CLI entrypoint and command graph.
//
// The Cobra-based command tree maps each batch stage (prepare, chunk, asr,
// wer, align) and the operational commands (pipeline, watch, runs, doctor,
// config) onto internal/workflow. It centralizes configuration resolution,
// logger construction and run-ledger access so subcommands only render
// results.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
