// Package sync schedules and runs reconciliation cycles.
//
// The Orchestrator runs one cycle for a (resource type, cloud) pair: it
// lists live resources through the cloud's Lister, translates them with the
// mapper, keys them by reference_id and hands them to the reconcile Syncer,
// which updates changed documents, soft-deletes vanished ones and inserts
// new ones. The stack variant walks heat stacks instead and lets the Syncer
// translate only the new resources.
//
// The Service registers one scheduler job per pair, plus a stack job per
// OpenStack cloud. Default intervals are 1000s for images, 500s for flavors
// and 1000s for stacks.
//
// # Routes
//
//	GET  /sync/jobs                      job status and last reports
//	POST /sync/:resource/:cloud          trigger a job (409 while running)
//	POST /sync/:resource/:cloud?dry_run=true
//	POST /mapper/:cloudType/:resource    translate a payload without storing it
package sync
