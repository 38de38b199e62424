// Package notifier delivers status texts to the configured chat.
//
// Send makes exactly one delivery attempt through a transport.Sender and
// reports the result as a bool. Failures are logged here and never surface
// as errors: the caller's only decision is whether to remember the text as
// delivered.
//
// # History
//
// For debugging and operator visibility, the service keeps a small in-memory
// history of recently delivered notifications.
package notifier
