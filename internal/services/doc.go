// Package services holds cross-cutting helpers shared by submate's task and
// dispatch layers: sentinel error markers with wrap/classify helpers, and
// context annotation for job and task identifiers used in logging.
package services
