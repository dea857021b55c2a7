// Package metrics records sitemap build metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics cost nothing unless a PrometheusRecorder is wired in:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	collector := sitemap.NewCollector(cfg, outDir, sitemap.WithRecorder(rec))
//
// The command line tool exports the registry to a node_exporter textfile
// after each build (WriteTextfile); there is no HTTP endpoint.
package metrics
