// Package content defines the station's content model: the content types the
// pipeline produces (song intros/outros, time announcements, weather reports),
// the immutable work items derived from the catalog and schedule, and the
// per-type policy table (criteria set, word bounds, path segment) consumed by
// the generation and audit stages.
package content
