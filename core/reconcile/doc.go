// Package reconcile compares the live resources of one cloud against the
// documents persisted for it and converges the store toward the live state.
//
// A cycle runs in a fixed order:
//
//  1. Load every ACTIVE document of the (collection, cloud, source) partition.
//  2. Build a Plan: documents whose reference_id is live and whose shared
//     fields differ get a patch of the differing fields; documents whose
//     reference_id is gone are marked DELETED with a terminated_at stamp.
//  3. Apply all staged updates in one batched write keyed by uuid.
//  4. Return the live records no document matched (the residual).
//
// SyncAndAddInDB extends a cycle by inserting the residual as new documents
// in fixed-size chunks.
//
// # Usage
//
//	live, err := reconcile.KeyByReferenceID(records)
//	if err != nil {
//	    return err // duplicate reference_id in one listing
//	}
//	syncer := reconcile.NewSyncer(store, mapper, logger, reconcile.Options{})
//	result, err := syncer.SyncAndAddInDB(ctx, "Volume", live, "regionone", reconcile.SyncOptions{})
//
// Concurrent cycles over the same partition are not coordinated here; the
// scheduler runs at most one instance of each job.
package reconcile
