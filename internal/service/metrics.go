package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recipeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_recipe_writes_total",
		Help: "Committed recipe writes by operation.",
	}, []string{"op"})

	edgeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_edge_writes_total",
		Help: "Committed favorite, cart and follow edge changes.",
	}, []string{"set", "op"})
)
