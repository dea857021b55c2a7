// Package build runs one sitemap build: resolve the sitemap settings, scan
// the content tree, feed every item to a collector and write the sitemap.
//
// All execution paths (generate, watch, tests) route through Service.Run.
package build
