// Package tasks defines the unit-of-work contract and the transcription
// service behind it.
//
// A task validates its params, derives a stable identity hash, and
// executes. Expected failures become an unsuccessful TaskResult rather
// than an error; a skip decision propagates as *SkipError so callers can
// report "nothing to do" instead of "failed". Tasks are constructed per
// invocation from a Registry and must tolerate retried execution.
package tasks
