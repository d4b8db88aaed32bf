package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ContainersStarted      = prom.NewCounter(prom.CounterOpts{Name: "harness_containers_started_total", Help: "Containers created and started"})
	ContainerStartFailures = prom.NewCounter(prom.CounterOpts{Name: "harness_container_start_failures_total", Help: "Containers that failed to create, start or become ready"})
	ContainerStopFailures  = prom.NewCounter(prom.CounterOpts{Name: "harness_container_stop_failures_total", Help: "Containers that failed to terminate at teardown"})
	ContainersRegistered   = prom.NewGauge(prom.GaugeOpts{Name: "harness_containers_registered", Help: "Containers currently held by open registries"})
	PropertiesPublished    = prom.NewCounter(prom.CounterOpts{Name: "harness_properties_published_total", Help: "Property values written to a sink"})
)

func init() {
	prom.MustRegister(ContainersStarted, ContainerStartFailures, ContainerStopFailures, ContainersRegistered, PropertiesPublished)
}

func Handler() http.Handler { return promhttp.Handler() }
