// Package poller runs the homework status loop.
//
// A Controller performs one synchronous cycle: fetch statuses since the
// checkpoint, validate the payload, render the first item and notify when
// the text differs from the last delivered one. A Driver repeats cycles
// forever with a fixed delay, classifying and reporting cycle errors.
//
// Both are single-goroutine by construction; checkpoint and last-notified
// state are never shared.
package poller
