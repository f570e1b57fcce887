// Package state holds the session-wide status shared between background work
// and the UI: the notices raised by failed fetches and the result of the
// server connectivity poll.
//
// Producers (page fetches, the queue, the poller) write through Notify and
// RecordPoll from their own goroutines. The UI reads a Snapshot on every
// tick. Snapshot returns copies, so the UI never observes a torn update and
// can keep a snapshot for as long as it likes.
//
// When a poll fails the previous notices stay in place and the failure
// streak grows; after two consecutive failures the snapshot reports the
// server as offline:
//
//	store.RecordPoll(err)  // ConsecutiveFailures++
//	store.RecordPoll(err)  // IsOffline() == true
//	store.RecordPoll(nil)  // back online
package state
