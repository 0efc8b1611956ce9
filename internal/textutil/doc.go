// Package textutil provides filename and path-segment sanitation used to keep
// the artifact layout stable and filesystem-safe across catalogs with
// arbitrary artist and title strings.
package textutil
