package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roomsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rooms_created_total",
			Help: "Managed voice rooms created, by kind",
		},
		[]string{"kind"},
	)

	roomsDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rooms_deleted_total",
			Help: "Managed voice rooms deleted, by reason",
		},
		[]string{"reason"},
	)

	ownershipTransfersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ownership_transfers_total",
			Help: "Room ownership handoffs after the owner left",
		},
	)

	mutesRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mutes_recorded_total",
			Help: "Mute records created, by scope (room or global)",
		},
		[]string{"scope"},
	)

	delayedUnmutesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delayed_unmutes_total",
			Help: "Delayed unmute task outcomes",
		},
		[]string{"outcome"},
	)

	spamPromptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spam_prompts_total",
			Help: "Owner-facing spam prompts sent",
		},
	)

	spamTimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spam_timeouts_total",
			Help: "Platform timeouts applied for join/leave spam",
		},
	)

	provisionQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "provision_queue_depth",
			Help: "Room creation requests waiting in the provisioning queue",
		},
	)
)

func RoomCreated(kind string) { roomsCreatedTotal.WithLabelValues(kind).Inc() }
func RoomDeleted(reason string) { roomsDeletedTotal.WithLabelValues(reason).Inc() }
func OwnershipTransferred() { ownershipTransfersTotal.Inc() }
func MuteRecorded(scope string) { mutesRecordedTotal.WithLabelValues(scope).Inc() }
func DelayedUnmute(outcome string) { delayedUnmutesTotal.WithLabelValues(outcome).Inc() }
func SpamPromptSent() { spamPromptsTotal.Inc() }
func SpamTimeoutApplied() { spamTimeoutsTotal.Inc() }
func SetProvisionQueueDepth(n int) { provisionQueueDepth.Set(float64(n)) }
