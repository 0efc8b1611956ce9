// Package services defines the shared error taxonomy and context annotations
// used across the pipeline stages and backend clients.
//
// The sentinel errors classify every failure the stages can encounter so the
// orchestrator can decide, uniformly, what aborts the run and what merely
// marks one work item as failed. Per-item failures (transient backend errors,
// quality failures, validation failures) never abort a batch; checkpoint and
// configuration errors always do.
package services
