package composite

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	viewerLabel  = "viewer"
	errTypeLabel = "error_type"
)

var (
	compositeLayers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stratum_composite_layers",
		Help: "The number of layers collected from composited scenes.",
	}, []string{
		viewerLabel,
	})

	compositeClippedLayers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stratum_composite_clipped_layers",
		Help: "The number of layers entirely outside the frustum.",
	}, []string{
		viewerLabel,
	})

	compositeSplits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stratum_composite_splits",
		Help: "The number of polygon splits performed while sorting layers.",
	}, []string{
		viewerLabel,
	})

	compositeFragments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stratum_composite_fragments",
		Help: "The number of fragments handed to the drawer.",
	}, []string{
		viewerLabel,
	})

	compositeSkippedFragments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stratum_composite_skipped_fragments",
		Help: "The fragments dropped because drawing them failed.",
	}, []string{
		viewerLabel,
		errTypeLabel,
	})

	compositeBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "stratum_composite_build_duration_seconds",
		Help: "The time to build the partition tree of a frame.",
	}, []string{
		viewerLabel,
	})
)

func instrumentLayers(viewer string, layers, clipped int) {
	compositeLayers.With(prometheus.Labels{
		viewerLabel: viewer,
	}).Add(float64(layers))

	compositeClippedLayers.With(prometheus.Labels{
		viewerLabel: viewer,
	}).Add(float64(clipped))
}

func instrumentBuild(viewer string, start time.Time, splits int) {
	compositeBuildDuration.With(prometheus.Labels{
		viewerLabel: viewer,
	}).Observe(time.Since(start).Seconds())

	compositeSplits.With(prometheus.Labels{
		viewerLabel: viewer,
	}).Add(float64(splits))
}

func instrumentFragment(viewer string) {
	compositeFragments.With(prometheus.Labels{
		viewerLabel: viewer,
	}).Inc()
}

func instrumentSkippedFragment(viewer string, err error) {
	compositeSkippedFragments.
		With(prometheus.Labels{
			viewerLabel:  viewer,
			errTypeLabel: errors.Type(err),
		}).
		Inc()
}
