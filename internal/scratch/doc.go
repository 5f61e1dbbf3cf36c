// Package scratch owns the directory transient delivery artifacts live in.
//
// Each delivery opens a Batch; every file it creates is named with the
// batch prefix and removed by Batch.Cleanup whether the delivery succeeded,
// failed or panicked. CleanStale sweeps leftovers of previous processes at
// startup.
package scratch
