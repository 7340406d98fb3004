package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mi9rem/garnet/atn"
)

// networkFile is the on-disk container for a serialized network.
type networkFile struct {
	Name string  `json:"name"`
	Data []int32 `json:"data"`
}

func readNetwork(path string) (string, *atn.Network, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("cannot read the network file %s: %w", path, err)
	}
	var f networkFile
	if err := json.Unmarshal(b, &f); err != nil {
		return "", nil, fmt.Errorf("cannot parse the network file %s: %w", path, err)
	}
	n, err := atn.Deserialize(f.Data)
	if err != nil {
		return "", nil, fmt.Errorf("cannot load the network %s: %w", f.Name, err)
	}
	log.Infof("loaded network %s: %v, %d states, %d decisions",
		f.Name, n.Kind, len(n.States), len(n.DecisionStates))
	return f.Name, n, nil
}
