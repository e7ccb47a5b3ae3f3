// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// Copyright 2024 FeatureForm Inc.
//

package metrics

import (
	"context"
	"net/http"

	"github.com/featureform/sparkify/config"
	"github.com/featureform/sparkify/fferr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	dto "github.com/prometheus/client_model/go"
)

type Status string

const (
	RUNNING Status = "running"
	ERROR   Status = "error"
	SUCCESS Status = "success"
)

const namespace = "sparkify"

// generic interfaces exposed to the pipeline
type MetricsHandler interface {
	BeginObservingStage(stage string, table string) StageObserver
	AddUnmatchedEvents(n int)
	Push(ctx context.Context) error
}

type StageObserver interface {
	AddRows(n int)
	SetError()
	Finish()
}

type PromMetricsHandler struct {
	Registry  *prometheus.Registry
	Hist      *prometheus.HistogramVec
	Count     *prometheus.CounterVec
	Rows      *prometheus.CounterVec
	Unmatched prometheus.Counter
	Name      string
	Gateway   string
}

type PromStageObserver struct {
	Timer  *prometheus.Timer
	Count  *prometheus.CounterVec
	Rows   *prometheus.CounterVec
	Stage  string
	Table  string
	Status Status
}

// NewMetrics builds a handler with its own registry. Name is the job name
// used when pushing to the gateway.
func NewMetrics(cfg config.MetricsConfig) *PromMetricsHandler {
	var stageCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Counter for pipeline stage runs, labeled by stage, table and status",
		},
		[]string{"stage", "table", "status"},
	)

	var stageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages, labeled by stage and table",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"stage", "table"},
	)

	var rowCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows read or written, labeled by stage and table",
		},
		[]string{"stage", "table"},
	)

	var unmatchedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unmatched_events_total",
			Help:      "NextSong events with no catalog song of the same title",
		},
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(stageCounter, stageLatency, rowCounter, unmatchedCounter)
	return &PromMetricsHandler{
		Registry:  registry,
		Hist:      stageLatency,
		Count:     stageCounter,
		Rows:      rowCounter,
		Unmatched: unmatchedCounter,
		Name:      cfg.JobName,
		Gateway:   cfg.PushgatewayURL,
	}
}

func (p *PromMetricsHandler) BeginObservingStage(stage string, table string) StageObserver {
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		p.Hist.WithLabelValues(stage, table).Observe(v)
	}))
	return &PromStageObserver{
		Timer:  timer,
		Count:  p.Count,
		Rows:   p.Rows,
		Stage:  stage,
		Table:  table,
		Status: RUNNING,
	}
}

func (p *PromMetricsHandler) AddUnmatchedEvents(n int) {
	p.Unmatched.Add(float64(n))
}

// Push sends every collected metric to the Pushgateway. It is a no-op when
// no gateway is configured.
func (p *PromMetricsHandler) Push(ctx context.Context) error {
	if p.Gateway == "" {
		return nil
	}
	err := push.New(p.Gateway, p.Name).
		Gatherer(p.Registry).
		Client(contextDoer{ctx: ctx, client: http.DefaultClient}).
		Push()
	if err != nil {
		return fferr.NewConnectionError("PUSHGATEWAY", err)
	}
	return nil
}

// contextDoer binds the pusher's requests to ctx.
type contextDoer struct {
	ctx    context.Context
	client *http.Client
}

func (d contextDoer) Do(req *http.Request) (*http.Response, error) {
	return d.client.Do(req.WithContext(d.ctx))
}

func (p *PromMetricsHandler) GetRowCount(stage string, table string) (int, error) {
	var m = &dto.Metric{}
	if err := p.Rows.WithLabelValues(stage, table).Write(m); err != nil {
		return 0, err
	}
	return int(m.Counter.GetValue()), nil
}

func (p *PromMetricsHandler) GetStageCount(stage string, table string, status Status) (int, error) {
	var m = &dto.Metric{}
	if err := p.Count.WithLabelValues(stage, table, string(status)).Write(m); err != nil {
		return 0, err
	}
	return int(m.Counter.GetValue()), nil
}

func (p *PromMetricsHandler) GetUnmatchedEvents() (int, error) {
	var m = &dto.Metric{}
	if err := p.Unmatched.Write(m); err != nil {
		return 0, err
	}
	return int(m.Counter.GetValue()), nil
}

func (p *PromStageObserver) AddRows(n int) {
	p.Rows.WithLabelValues(p.Stage, p.Table).Add(float64(n))
}

func (p *PromStageObserver) SetError() {
	p.Status = ERROR
	p.Timer.ObserveDuration()
	p.Count.WithLabelValues(p.Stage, p.Table, string(p.Status)).Inc()
}

func (p *PromStageObserver) Finish() {
	p.Status = SUCCESS
	p.Timer.ObserveDuration()
	p.Count.WithLabelValues(p.Stage, p.Table, string(p.Status)).Inc()
}
