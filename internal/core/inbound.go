package core

import (
	"encoding/json"
	"fmt"
)

// Inbound is a decoded client message. Fields not used by Action are ignored.
type Inbound struct {
	Action   Action `json:"action"`
	Username string `json:"username"`
	Code     string `json:"code"`
}

// DecodeInbound parses one client message. Anything that is not a JSON
// object with string-typed known fields is rejected.
func DecodeInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, fmt.Errorf("decode inbound: %w", err)
	}
	return in, nil
}
