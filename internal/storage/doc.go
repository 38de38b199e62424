// Package storage keeps the cycle journal: one record per poll cycle with
// its outcome, for operators and the history command.
//
// The journal is write-mostly. Nothing in the poll loop reads it back, so
// restarting the agent always starts from a fresh checkpoint.
package storage
