// Package language normalizes language identifiers to a single canonical
// form so skip decisions and filename formatting never compare raw tags.
//
// Media containers, sidecar filenames, and user configuration mix ISO 639-1,
// both ISO 639-2 variants, BCP-47 tags, and full names. Parse collapses all
// of them to Code; None marks input that is not a language at all, which the
// skip engine treats differently from a target that was never set.
package language
