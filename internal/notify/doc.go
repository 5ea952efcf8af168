// Package notify renders change sets into size-bounded alert batches
// and delivers them to a webhook sink.
//
// Every non-empty change bucket is chunked into alerts of at most 15
// files; alerts across all buckets are grouped into delivery batches
// of at most 10 and sent one batch per transport call. A failed batch
// is logged and the remaining batches are still attempted; nothing is
// retried within a cycle.
package notify
