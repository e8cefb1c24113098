package ros

import (
	"encoding/json"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/pourdemo/solution"
)

func decode(input, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// DecodeSolution decodes a generic JSON message into a solution. The message may be a bag
// envelope with "meta" and "data" keys or the bare solution.
func DecodeSolution(raw map[string]interface{}) (*solution.Solution, error) {
	_, hasData := raw["data"].(map[string]interface{})
	_, hasMeta := raw["meta"]
	if hasData && hasMeta {
		var env SolutionMessage
		if err := decode(raw, &env); err != nil {
			return nil, errors.Wrap(err, "decoding solution message")
		}
		return env.Data.ToSolution()
	}
	var msg Solution
	if err := decode(raw, &msg); err != nil {
		return nil, errors.Wrap(err, "decoding solution message")
	}
	return msg.ToSolution()
}

// DecodeSolutionJSON decodes one JSON document into a solution.
func DecodeSolutionJSON(data []byte) (*solution.Solution, error) {
	raw := map[string]interface{}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing solution json")
	}
	return DecodeSolution(raw)
}

// ReadSolutionFile reads a JSON file holding one solution.
func ReadSolutionFile(path string) (*solution.Solution, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sol, err := DecodeSolutionJSON(data)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", path)
	}
	return sol, nil
}
