// Package grouping collapses near-duplicate plate reads into vehicle-pass events.
//
// A camera typically emits several reads for one pass (multi-frame OCR). Run
// sorts a batch of reads by timestamp, partitions it into event groups under
// one of two policies, picks the highest-confidence read of every group as its
// representative, and returns one page of groups ordered newest first.
//
// Policies:
//   - PolicyStrict chains reads whose gap to the previously added read is
//     within the window. A chain may span longer than the window.
//   - PolicySimilarity folds later reads into a group when they are within the
//     window of the group's first read and their plate strings are similar
//     enough (Ratcliff/Obershelp ratio, see StringSimilarity).
//
// The similarity policy is quadratic in the number of reads that fall inside
// one window and does not scale to unbounded batches. Callers must bound the
// batch (date range filter) and Run refuses batches above MaxSimilarityBatch.
//
// The package is pure: no I/O, no logging and no package-level mutable state,
// so independent batches may be grouped concurrently.
package grouping
