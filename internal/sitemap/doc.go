// Package sitemap turns the content items announced during a site build into a
// sitemap file.
//
// The pipeline has five parts:
//
//   - ResolveConfig validates the raw "sitemap" settings block and substitutes
//     defaults for anything missing or malformed. Only an exclusion pattern that
//     fails to compile is an error.
//   - Filter holds the compiled exclusion patterns. A URL is excluded when any
//     pattern matches anywhere inside it.
//   - Resolver computes one Entry per Item: per-item metadata wins over the
//     per-class configuration, which wins over the built-in defaults.
//   - Collector receives items one by one (Record), de-duplicates them by loc
//     with last-write-wins semantics and hands the result to the Emitter exactly
//     once (Finalize).
//   - Emitter serializes entries as sitemaps.org XML or as a plain URL list and
//     replaces the destination file atomically.
//
// A Collector belongs to a single build and is not safe for concurrent use.
package sitemap
