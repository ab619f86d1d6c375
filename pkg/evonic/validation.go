package evonic

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Module identifiers reported in DeviceInfo.Modules.
const (
	ModuleLightBox    = "light_box"
	ModuleTemperature = "temperature"
)

// RGB zones. The trailing digit addresses the zone in raw "rgb set" commands.
const (
	ZoneFlame = "rgb0"
	ZoneCoal  = "rgb1"
)

// Accepted intervals (inclusive).
const (
	MinLevel = 0
	MaxLevel = 255

	MinCelsius    = 11
	MaxCelsius    = 32
	MinFahrenheit = 50
	MaxFahrenheit = 90
)

// PowerCommand switches the fire on or off.
type PowerCommand string

const (
	PowerOn     PowerCommand = "on"
	PowerOff    PowerCommand = "off"
	PowerToggle PowerCommand = "toggle"
)

// ValidatePower returns the voice token for a power command.
func ValidatePower(cmd PowerCommand) (string, error) {
	switch cmd {
	case PowerOn:
		return VoiceFireOn, nil
	case PowerOff:
		return VoiceFireOff, nil
	case PowerToggle:
		return VoiceFireToggle, nil
	}
	return "", NewInvalidArgumentError(fmt.Sprintf("power command %q not valid, must be one of 'on', 'off' or 'toggle'", cmd))
}

// ValidateEffect checks that an effect is in the device's catalog.
func ValidateEffect(s *Snapshot, effect string) error {
	if s == nil {
		return errUninitialized()
	}
	if !s.HasEffect(effect) {
		return NewUnsupportedFeatureError(fmt.Sprintf("%q is not a valid effect for this device", effect))
	}
	return nil
}

// ValidateFeatureLight checks that the feature light module is installed.
func ValidateFeatureLight(s *Snapshot) error {
	if s == nil {
		return errUninitialized()
	}
	if !s.Info.HasModule(ModuleLightBox) {
		return NewUnsupportedFeatureError("feature light is not supported on this device")
	}
	return nil
}

// ValidateZoneLevel validates a brightness or animation speed for an RGB zone
// and returns the zone digit and level.
func ValidateZoneLevel(s *Snapshot, zone string, value any) (byte, int, error) {
	if s == nil {
		return 0, 0, errUninitialized()
	}
	if !s.Info.HasModule(zone) {
		return 0, 0, NewUnsupportedFeatureError(fmt.Sprintf("%s is not supported on this device", zone))
	}
	digit, err := zoneDigit(zone)
	if err != nil {
		return 0, 0, err
	}
	level, ok := integerArgument(value)
	if !ok {
		return 0, 0, NewInvalidArgumentError(fmt.Sprintf("level must be an integer, got %T", value))
	}
	if level < MinLevel || level > MaxLevel {
		return 0, 0, NewOutOfRangeError(fmt.Sprintf("%d is not a valid value, must be between %d - %d", level, MinLevel, MaxLevel))
	}
	return digit, level, nil
}

// ValidateTemperature validates a heater set point against the device's unit.
// The module check runs before any inspection of value.
func ValidateTemperature(s *Snapshot, value any) (int, error) {
	if s == nil {
		return 0, errUninitialized()
	}
	if !s.Info.HasModule(ModuleTemperature) {
		return 0, NewUnsupportedFeatureError("temperature control is not supported on this device")
	}
	temp, ok := integerArgument(value)
	if !ok {
		return 0, NewInvalidArgumentError(fmt.Sprintf("temperature must be an integer, got %T", value))
	}

	lo, hi := MinCelsius, MaxCelsius
	if s.Info.IsFahrenheit() {
		lo, hi = MinFahrenheit, MaxFahrenheit
	}
	if temp < lo || temp > hi {
		return 0, NewOutOfRangeError(fmt.Sprintf("%d is not a valid value, must be between %d - %d", temp, lo, hi))
	}
	return temp, nil
}

func zoneDigit(zone string) (byte, error) {
	if zone == "" {
		return 0, NewInvalidArgumentError("zone must not be empty")
	}
	d := zone[len(zone)-1]
	if d < '0' || d > '9' {
		return 0, NewInvalidArgumentError(fmt.Sprintf("zone %q does not end in a digit", zone))
	}
	return d, nil
}

// integerArgument accepts Go integer kinds and integral json.Number values.
// Strings and floats are rejected even when they hold a whole number.
func integerArgument(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case json.Number:
		i, err := strconv.Atoi(n.String())
		return i, err == nil
	}
	return 0, false
}
