// Package skip decides whether a media file needs a subtitle generated.
//
// The decision is an ordered chain of rules over configuration and the
// file's current state (embedded streams, sidecar files). The first rule
// that matches wins and names the reason, which callers surface verbatim
// in logs and CLI output.
package skip
