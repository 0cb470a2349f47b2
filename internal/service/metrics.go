package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/XquisitoAI/xquisito-backend/internal/models"
)

var chargeAttempts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "xquisito_charge_attempts_total",
		Help: "Total number of charge attempts by strategy and outcome",
	},
	[]string{"strategy", "outcome"},
)

func recordCharge(strategy models.Strategy, outcome string) {
	chargeAttempts.WithLabelValues(string(strategy), outcome).Inc()
}
