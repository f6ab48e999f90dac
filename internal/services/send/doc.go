// Package send implements the end-to-end "send file" operation.
//
// A send walks ResolveRecipient, Encrypt, Publish, Pin, BuildRecord,
// RelayAttest, RelayDeliver and InboxAppend in that order. Only the
// orchestrator retries: transient and timeout errors from the clients are
// retried with bounded exponential backoff, every other error aborts the
// send with a StageError naming the stage and the side effects already
// made. Progress is journaled so that re-running an interrupted send reuses
// the published content and never appends twice.
package send
