// Package dispatch runs tasks either inline or through the durable queue.
//
// The dispatcher validates input synchronously, then executes immediately
// on the caller's goroutine or hands the job to the queue; blocking
// submissions wait for the worker and return the same outcome shape as
// immediate ones. The worker pool claims jobs, dispatches them by task
// name, and maps outcomes to queue transitions, retrying failures with a
// fixed delay until attempts run out.
package dispatch
