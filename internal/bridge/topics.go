package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/muurk/evonic/pkg/evonic"
)

// Availability payloads
const (
	Online  = "online"
	Offline = "offline"
)

// Topics are the MQTT topics used for one fire.
type Topics struct {
	State        string // Retained JSON snapshot
	Availability string // Retained "online"/"offline", also the LWT
	Set          string // Inbound command requests
	Error        string // Rejected or failed commands
}

// NewTopics derives the topic set from a prefix such as "evonic" or "home/lounge/fire".
func NewTopics(prefix string) Topics {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = "evonic"
	}
	return Topics{
		State:        prefix + "/state",
		Availability: prefix + "/availability",
		Set:          prefix + "/set",
		Error:        prefix + "/error",
	}
}

// DecodeCommand parses a set payload:
//
//	{"command": "temperature", "value": 21}
//	{"command": "brightness", "zone": "rgb0", "value": 200}
//
// Numbers are kept as json.Number so integer validation sees the value exactly.
func DecodeCommand(payload []byte) (evonic.Command, error) {
	var cmd evonic.Command
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&cmd); err != nil {
		return evonic.Command{}, fmt.Errorf("invalid command payload: %w", err)
	}
	if cmd.Name == "" {
		return evonic.Command{}, errors.New("invalid command payload: missing \"command\"")
	}
	return cmd, nil
}

// errorPayload is published to Topics.Error when a command cannot be carried out.
type errorPayload struct {
	Command string `json:"command,omitempty"`
	Kind    string `json:"kind"`
	Error   string `json:"error"`
}

func encodeError(command string, err error) []byte {
	p := errorPayload{Command: command, Kind: "invalid payload", Error: err.Error()}
	var e *evonic.Error
	if errors.As(err, &e) {
		p.Kind = e.Kind.String()
	}
	data, _ := json.Marshal(p)
	return data
}
