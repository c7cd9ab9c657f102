package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var loopErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "flairmod_loop_errors",
	Help: "Number of passes that failed and were restarted",
})

func runMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}
