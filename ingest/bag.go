package ingest

import (
	"context"

	"github.com/edaniels/gobag/rosbag"
	"github.com/pkg/errors"

	"go.viam.com/pourdemo/logging"
	"go.viam.com/pourdemo/ros"
	"go.viam.com/pourdemo/solution"
)

// BagSource publishes every solution recorded on a topic of a ROS bag.
type BagSource struct {
	path     string
	bagTopic string
	bus      *SolutionBus
	topic    string
	logger   logging.Logger

	// WaitForSubscriber makes Run hold back until something listens on the bus topic.
	WaitForSubscriber bool

	readMessages func(path, topic string) ([]map[string]interface{}, error)
}

// NewBagSource returns a source reading bagTopic from the bag at path and publishing on topic.
// An empty bagTopic reads DefaultBagTopic.
func NewBagSource(path, bagTopic string, bus *SolutionBus, topic string, logger logging.Logger) *BagSource {
	if bagTopic == "" {
		bagTopic = DefaultBagTopic
	}
	return &BagSource{
		path:              path,
		bagTopic:          bagTopic,
		bus:               bus,
		topic:             topic,
		logger:            logger,
		WaitForSubscriber: true,
		readMessages:      readBagMessages,
	}
}

func readBagMessages(path, topic string) ([]map[string]interface{}, error) {
	rb, err := ros.ReadBag(path)
	if err != nil {
		return nil, err
	}
	return ros.AllMessagesForTopic(rb, topic)
}

// ReadBagSolutions decodes every solution recorded on topic in the bag at path.
func ReadBagSolutions(path, topic string) ([]*solution.Solution, error) {
	rb, err := ros.ReadBag(path)
	if err != nil {
		return nil, err
	}
	return BagSolutions(rb, topic)
}

// BagSolutions decodes every solution recorded on topic in an already read bag.
func BagSolutions(rb *rosbag.RosBag, topic string) ([]*solution.Solution, error) {
	msgs, err := ros.AllMessagesForTopic(rb, topic)
	if err != nil {
		return nil, err
	}
	return decodeAll(msgs)
}

func decodeAll(msgs []map[string]interface{}) ([]*solution.Solution, error) {
	sols := make([]*solution.Solution, 0, len(msgs))
	for i, msg := range msgs {
		sol, err := ros.DecodeSolution(msg)
		if err != nil {
			return nil, errors.Wrapf(err, "message %d", i)
		}
		sols = append(sols, sol)
	}
	return sols, nil
}

// Run reads the bag and publishes its solutions in recorded order.
func (s *BagSource) Run(ctx context.Context) error {
	msgs, err := s.readMessages(s.path, s.bagTopic)
	if err != nil {
		return errors.Wrapf(err, "reading %s from bag %q", s.bagTopic, s.path)
	}
	sols, err := decodeAll(msgs)
	if err != nil {
		return errors.Wrapf(err, "decoding %s from bag %q", s.bagTopic, s.path)
	}
	if s.WaitForSubscriber {
		if err := s.bus.WaitForSubscriber(ctx, s.topic); err != nil {
			return err
		}
	}
	s.logger.Infow("publishing solutions from bag", "bag", s.path, "count", len(sols))
	for _, sol := range sols {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.bus.Publish(ctx, s.topic, sol)
	}
	return nil
}
