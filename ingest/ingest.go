// Package ingest feeds recorded planning solutions onto a bus topic, either from a ROS bag or
// from a directory of solution JSON files.
package ingest

import (
	"context"

	"go.viam.com/pourdemo/pubsub"
	"go.viam.com/pourdemo/solution"
)

// DefaultBagTopic is the topic the pour task publishes its solutions on.
const DefaultBagTopic = "/mtc_pour/solution"

// A Source publishes solutions onto a bus until it runs out of them or ctx is done.
type Source interface {
	Run(ctx context.Context) error
}

// SolutionBus is the bus solutions are published on.
type SolutionBus = pubsub.Bus[*solution.Solution]
