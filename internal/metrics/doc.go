// Package metrics provides build and dev server metrics for runwasm.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default, so metrics stay off unless the dev server is started with
// metrics enabled, in which case a PrometheusRecorder is registered on a
// private registry and exposed through HTTPHandler:
//
//	reg := prom.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	svc := build.NewService(runner, post).WithRecorder(recorder)
//	mux.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
