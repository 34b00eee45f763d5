package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	directionUpload   = "upload"
	directionDownload = "download"
)

var (
	passesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thennow_sync_passes_total",
		Help: "Sync passes by direction and outcome",
	}, []string{"direction", "outcome"})

	transfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thennow_sync_transfers_total",
		Help: "Image transfers by direction and outcome",
	}, []string{"direction", "outcome"})

	passDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "thennow_sync_pass_duration_seconds",
		Help:    "Wall time of a sync pass",
		Buckets: prometheus.DefBuckets,
	}, []string{"direction"})
)

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
