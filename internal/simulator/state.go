package simulator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"

	"github.com/muurk/evonic/pkg/evonic"
)

// Errors returned by State.Apply for frames the firmware would ignore.
var (
	ErrMalformedFrame = errors.New("malformed control frame")
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotInstalled   = errors.New("module not installed")
	ErrOutOfRange     = errors.New("value out of range")
)

// DefaultDocument returns the /modules.json document of a v630 fire with
// every module fitted, switched off.
func DefaultDocument() map[string]any {
	return map[string]any{
		"ip":             "127.0.0.1",
		"subnet":         "255.255.255.0",
		"ssidAP":         "evonic-sim",
		"dbm":            "-52",
		"mac":            "02:00:00:00:00:01",
		"product":        "Evonic Simulator",
		"configs":        "v630",
		"buildData":      "sim",
		"fahrenheit":     0,
		"time":           "",
		"modules":        []any{evonic.ModuleLightBox, evonic.ModuleTemperature, evonic.ZoneFlame, evonic.ZoneCoal},
		"temperature":    19,
		"templevel":      21,
		"Heater":         0,
		"Fire":           0,
		"effect":         "Vero",
		"pinout3":        0,
		"brightnessRGB0": 200,
		"speedRGB0":      40,
		"brightnessRGB1": 150,
		"speedRGB1":      30,
	}
}

// LoadDocument decodes a JSON state document, keeping numbers as json.Number.
func LoadDocument(data []byte) (map[string]any, error) {
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid state document: %w", err)
	}
	if doc == nil {
		return nil, errors.New("invalid state document: not a JSON object")
	}
	return doc, nil
}

// State is the simulated fire's wire document.
type State struct {
	mu      sync.Mutex
	doc     map[string]any
	ambient int
}

// NewState copies doc as the initial state. Its temperature becomes the
// room temperature the heater simulation cools back to.
func NewState(doc map[string]any) *State {
	s := &State{doc: maps.Clone(doc)}
	s.ambient = asInt(s.doc["temperature"])
	return s
}

// Document returns a copy of the current state.
func (s *State) Document() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.doc)
}

type controlFrame struct {
	Voice *string `json:"voice"`
	Cmd   *string `json:"cmd"`
}

// Apply interprets one control frame and returns the keys it changed.
// A nil map with a nil error means the frame changed nothing.
func (s *State) Apply(frame []byte) (map[string]any, error) {
	var f controlFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changes := map[string]any{}
	var err error
	switch {
	case f.Voice != nil:
		err = s.voice(*f.Voice, changes)
	case f.Cmd != nil:
		err = s.cmd(*f.Cmd, changes)
	default:
		err = fmt.Errorf("%w: neither voice nor cmd present", ErrMalformedFrame)
	}
	if err != nil {
		return nil, err
	}
	s.updateHeater(changes)

	if len(changes) == 0 {
		return nil, nil
	}
	return changes, nil
}

// Tick advances the heater simulation by one degree.
func (s *State) Tick() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasModule(evonic.ModuleTemperature) {
		return nil
	}

	changes := map[string]any{}
	current := asInt(s.doc["temperature"])
	switch {
	case asInt(s.doc["Heater"]) == 1:
		s.set(changes, "temperature", current+1)
	case current > s.ambient:
		s.set(changes, "temperature", current-1)
	}
	s.updateHeater(changes)

	if len(changes) == 0 {
		return nil
	}
	return changes
}

func (s *State) voice(token string, changes map[string]any) error {
	switch token {
	case evonic.VoiceFireOn:
		s.set(changes, "Fire", 1)
	case evonic.VoiceFireOff:
		s.set(changes, "Fire", 0)
	case evonic.VoiceFireToggle:
		s.set(changes, "Fire", 1-asInt(s.doc["Fire"]))
	case evonic.VoiceFeatureLight:
		if !s.hasModule(evonic.ModuleLightBox) {
			return fmt.Errorf("%w: %s", ErrNotInstalled, evonic.ModuleLightBox)
		}
		s.set(changes, "pinout3", 1-asInt(s.doc["pinout3"]))
	default:
		configs, _ := s.doc["configs"].(string)
		for _, effect := range evonic.EffectsFor(configs) {
			if effect == token {
				s.set(changes, "effect", token)
				return nil
			}
		}
		return fmt.Errorf("%w: voice %q", ErrUnknownCommand, token)
	}
	return nil
}

// cmd handles the raw command grammar:
//
//	templevel <value>
//	rgb set <zone_digit> - <speed|-> <brightness|-> -
func (s *State) cmd(text string, changes map[string]any) error {
	fields := strings.Fields(text)
	switch {
	case len(fields) == 2 && fields[0] == "templevel":
		return s.templevel(fields[1], changes)
	case len(fields) == 7 && fields[0] == "rgb" && fields[1] == "set":
		return s.rgb(fields[2], fields[4], fields[5], changes)
	}
	return fmt.Errorf("%w: cmd %q", ErrUnknownCommand, text)
}

func (s *State) templevel(value string, changes map[string]any) error {
	if !s.hasModule(evonic.ModuleTemperature) {
		return fmt.Errorf("%w: %s", ErrNotInstalled, evonic.ModuleTemperature)
	}
	temp, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: templevel %q", ErrMalformedFrame, value)
	}
	lo, hi := evonic.MinCelsius, evonic.MaxCelsius
	if asInt(s.doc["fahrenheit"]) == 1 {
		lo, hi = evonic.MinFahrenheit, evonic.MaxFahrenheit
	}
	if temp < lo || temp > hi {
		return fmt.Errorf("%w: templevel %d", ErrOutOfRange, temp)
	}
	s.set(changes, "templevel", temp)
	return nil
}

func (s *State) rgb(digit, speed, brightness string, changes map[string]any) error {
	if !s.hasModule("rgb" + digit) {
		return fmt.Errorf("%w: rgb%s", ErrNotInstalled, digit)
	}
	levels := []struct{ key, value string }{
		{"speedRGB" + digit, speed},
		{"brightnessRGB" + digit, brightness},
	}
	for _, l := range levels {
		if l.value == "-" {
			continue
		}
		n, err := strconv.Atoi(l.value)
		if err != nil {
			return fmt.Errorf("%w: %s %q", ErrMalformedFrame, l.key, l.value)
		}
		if n < evonic.MinLevel || n > evonic.MaxLevel {
			return fmt.Errorf("%w: %s %d", ErrOutOfRange, l.key, n)
		}
		s.set(changes, l.key, n)
	}
	return nil
}

// updateHeater runs the heater while the fire is on and the room is below target.
func (s *State) updateHeater(changes map[string]any) {
	if !s.hasModule(evonic.ModuleTemperature) {
		return
	}
	heating := 0
	if asInt(s.doc["Fire"]) == 1 && asInt(s.doc["temperature"]) < asInt(s.doc["templevel"]) {
		heating = 1
	}
	s.set(changes, "Heater", heating)
}

func (s *State) set(changes map[string]any, key string, value any) {
	if current, ok := s.doc[key]; ok && sameValue(current, value) {
		return
	}
	s.doc[key] = value
	changes[key] = value
}

func (s *State) hasModule(name string) bool {
	switch modules := s.doc["modules"].(type) {
	case []any:
		for _, m := range modules {
			if m == name {
				return true
			}
		}
	case []string:
		for _, m := range modules {
			if m == name {
				return true
			}
		}
	}
	return false
}

func sameValue(a, b any) bool {
	if ai, ok := intValue(a); ok {
		bi, ok := intValue(b)
		return ok && ai == bi
	}
	return a == b
}

func asInt(v any) int {
	n, _ := intValue(v)
	return n
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case json.Number:
		i, err := strconv.Atoi(n.String())
		return i, err == nil
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
