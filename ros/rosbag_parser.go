// Package ros reads MoveIt Task Constructor messages recorded in ROS bags, or saved as JSON in the
// same layout, and converts them into solutions and planning scene changes.
package ros

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/edaniels/gobag/rosbag"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.viam.com/utils"
)

// SolutionType is the ROS type name of a task constructor solution.
const SolutionType = "moveit_task_constructor_msgs/Solution"

// ReadBag reads the contents of a rosbag into a gobag data structure.
func ReadBag(filename string) (*rosbag.RosBag, error) {
	//nolint:gosec
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open input file")
	}
	defer utils.UncheckedErrorFunc(f.Close)

	rb := rosbag.NewRosBag()

	if err := rb.Read(f); err != nil {
		return nil, errors.Wrapf(err, "unable to create ros bag, error")
	}

	return rb, nil
}

// TopicKey is the key gobag files messages of a topic under: no leading slash, lowercased,
// with remaining slashes replaced by underscores.
func TopicKey(topic string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(topic, "/"), "/", "_"))
}

// Topics returns the recorded topics mapped to their message types, as "topic (type)" strings in
// sorted order.
func Topics(rb *rosbag.RosBag) []string {
	topics := lo.Uniq(lo.MapToSlice(rb.Connections, func(_ int32, c rosbag.RosConnection) string {
		return c.HeaderTopic + " (" + c.ConnectionType + ")"
	}))
	sort.Strings(topics)
	return topics
}

// AllMessagesForTopic returns all messages for a specific topic in the ros bag.
func AllMessagesForTopic(rb *rosbag.RosBag, topic string) ([]map[string]interface{}, error) {
	if err := rb.ParseTopicsToJSON(
		"",
		func(int64) bool { return true },
		func(t string) bool { return TopicKey(t) == TopicKey(topic) },
		false,
	); err != nil {
		return nil, errors.Wrapf(err, "error while parsing bag to JSON")
	}

	msgs := rb.TopicsAsJSON[TopicKey(topic)]
	if msgs == nil {
		return nil, errors.Errorf("no messages for topic %s", topic)
	}
	return decodeLines(msgs)
}

func decodeLines(r interface{ ReadBytes(byte) ([]byte, error) }) ([]map[string]interface{}, error) {
	all := []map[string]interface{}{}
	for {
		data, err := r.ReadBytes('\n')
		if len(strings.TrimSpace(string(data))) > 0 {
			message := map[string]interface{}{}
			if err := json.Unmarshal(data, &message); err != nil {
				return nil, err
			}
			all = append(all, message)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
	}
	return all, nil
}
