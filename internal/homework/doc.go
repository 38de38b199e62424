// Package homework talks to the homework status API.
//
// It owns the wire contract: fetching a status page for a time window
// (Client.Fetch), checking the decoded payload shape (CheckResponse) and
// rendering the verdict for one homework (ParseStatus). Every failure is a
// *Error carrying a Kind so callers can decide how loud to be about it.
package homework
