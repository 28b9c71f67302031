package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var MessagesEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "antiraid_messages_evaluated_total",
	Help: "Inbound messages seen by the anti-raid controller, by outcome",
}, []string{"outcome"})

var Breaches = promauto.NewCounter(prometheus.CounterOpts{
	Name: "antiraid_breaches_total",
	Help: "Sliding window threshold breaches",
})

var ActionsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "antiraid_actions_dispatched_total",
	Help: "Side effects handed to the dispatcher, by type",
}, []string{"type"})

var ActionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "antiraid_actions_completed_total",
	Help: "Side effects that finished, by type and result",
}, []string{"type", "result"})

var ActionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "antiraid_action_duration_sec",
	Help: "Duration of side effect execution including retries",
}, []string{"type"})

var TrackedActors = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "antiraid_tracked_actors",
	Help: "Actors currently held in memory, by store",
}, []string{"store"})

var SweptActors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "antiraid_swept_actors_total",
	Help: "Idle actors evicted by the state sweeper",
})

var IngestSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "antiraid_ingest_submissions_total",
	Help: "Events accepted by an ingest shard",
}, []string{"shard"})

var IngestQueueFull = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "antiraid_ingest_queue_full_total",
	Help: "Events rejected because an ingest shard stayed full",
}, []string{"shard"})

var IngestQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "antiraid_ingest_queue_depth",
	Help: "Events waiting in an ingest shard",
}, []string{"shard"})

var IngestRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "antiraid_ingest_run_duration_sec",
	Help:    "Time spent evaluating one event on an ingest shard",
	Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
}, []string{"shard"})

var VanityGrants = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "antiraid_vanity_grants_total",
	Help: "Vanity role assignments attempted on member join, by result",
}, []string{"result"})

var CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "antiraid_commands_total",
	Help: "Prefix commands handled, by command and result",
}, []string{"command", "result"})
