package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

var (
	movementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paywallet",
			Name:      "ledger_movements_total",
			Help:      "Ledger movements by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	registrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paywallet",
			Name:      "account_registrations_total",
			Help:      "Account registrations by outcome",
		},
		[]string{"outcome"},
	)

	signInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paywallet",
			Name:      "sign_ins_total",
			Help:      "Sign-in attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func outcome(err error) string {
	if err != nil {
		return outcomeFailure
	}
	return outcomeSuccess
}
