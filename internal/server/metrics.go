// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dacolabs/jsonforms-go/editor"
	"github.com/dacolabs/jsonforms-go/jsonschema"
	"github.com/dacolabs/jsonforms-go/uischema"
)

// Action outcomes, as recorded in the "outcome" label.
const (
	OutcomeApplied   = "applied"
	OutcomeUnchanged = "unchanged"
	OutcomeRejected  = "rejected"
)

// Metrics holds the session's Prometheus collectors.
type Metrics struct {
	actions      *prometheus.CounterVec
	schemaNodes  prometheus.Gauge
	uiNodes      prometheus.Gauge
	links        prometheus.Gauge
	streamsTotal prometheus.Counter
	streams      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with registerer,
// unless it is nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formedit_actions_total",
			Help: "Editor actions by type and outcome",
		}, []string{"type", "outcome"}),
		schemaNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "formedit_schema_nodes",
			Help: "Number of nodes in the current schema tree",
		}),
		uiNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "formedit_ui_nodes",
			Help: "Number of nodes in the current UI schema tree",
		}),
		links: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "formedit_links",
			Help: "Number of controls linked to a schema node",
		}),
		streamsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formedit_streams_total",
			Help: "Total number of state stream connections",
		}),
		streams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "formedit_streams_active",
			Help: "Number of open state stream connections",
		}),
	}
	if registerer != nil {
		registerer.MustRegister(m.actions, m.schemaNodes, m.uiNodes, m.links, m.streamsTotal, m.streams)
	}
	return m
}

func (m *Metrics) observeAction(typ, outcome string) {
	m.actions.WithLabelValues(typ, outcome).Inc()
}

func (m *Metrics) observeState(s editor.State) {
	var schemaNodes, uiNodes, links int
	for range jsonschema.All(s.Schema) {
		schemaNodes++
	}
	for n := range uischema.All(s.UISchema) {
		uiNodes++
		if n.LinkedSchemaNode != "" {
			links++
		}
	}
	m.schemaNodes.Set(float64(schemaNodes))
	m.uiNodes.Set(float64(uiNodes))
	m.links.Set(float64(links))
}
