package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("moderation")

var submissionsRemoved = promauto.NewCounter(prometheus.CounterOpts{
	Name: "flairmod_submissions_removed",
	Help: "Number of unflaired submissions provisionally removed",
})

var submissionsRestored = promauto.NewCounter(prometheus.CounterOpts{
	Name: "flairmod_submissions_restored",
	Help: "Number of submissions restored after receiving flair",
})

var submissionsExpired = promauto.NewCounter(prometheus.CounterOpts{
	Name: "flairmod_submissions_expired",
	Help: "Number of submissions permanently removed at the flair deadline",
})

var submissionsAbandoned = promauto.NewCounter(prometheus.CounterOpts{
	Name: "flairmod_submissions_abandoned",
	Help: "Number of tracked submissions dropped because the author deleted them",
})

var trackingConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Name: "flairmod_tracking_conflicts",
	Help: "Number of duplicate tracking inserts resolved during intake",
})

var invitesAccepted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "flairmod_invites_accepted",
	Help: "Number of moderator invitations accepted with sufficient permissions",
})

var invitesRejected = promauto.NewCounter(prometheus.CounterOpts{
	Name: "flairmod_invites_rejected",
	Help: "Number of moderator invitations declined for insufficient permissions",
})
