// Package metrics provides build metrics for the site generator.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics never need nil checks at call sites:
//
//	gen, err := site.New(cfg, site.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The preview server exposes the Prometheus registry through HTTPHandler.
package metrics
