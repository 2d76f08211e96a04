// Package scheduler runs named jobs on independent fixed intervals with at
// most one in-flight run per job.
package scheduler
