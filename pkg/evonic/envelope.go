package evonic

import (
	"encoding/json"
	"fmt"
)

// Voice tokens understood by the firmware's command interpreter.
// Effect names are also sent as voice tokens.
const (
	VoiceFireOn       = "Fire_ON"
	VoiceFireOff      = "Fire_OFF"
	VoiceFireToggle   = "Fire_ON/OFF"
	VoiceFeatureLight = "Light_box"
)

type voiceEnvelope struct {
	Voice string `json:"voice"`
}

type cmdEnvelope struct {
	Cmd string `json:"cmd"`
}

// BuildVoiceMessage encodes {"voice":"<token>"}.
func BuildVoiceMessage(token string) ([]byte, error) {
	return json.Marshal(voiceEnvelope{Voice: token})
}

// BuildCmdMessage encodes {"cmd":"<text>"}.
func BuildCmdMessage(text string) ([]byte, error) {
	return json.Marshal(cmdEnvelope{Cmd: text})
}

// BrightnessCmd builds the raw command setting a zone's brightness.
//
//	rgb set <zone_digit> - - <brightness> -
func BrightnessCmd(zoneDigit byte, brightness int) string {
	return fmt.Sprintf("rgb set %c - - %d -", zoneDigit, brightness)
}

// SpeedCmd builds the raw command setting a zone's animation speed.
//
//	rgb set <zone_digit> - <speed> - -
func SpeedCmd(zoneDigit byte, speed int) string {
	return fmt.Sprintf("rgb set %c - %d - -", zoneDigit, speed)
}

// TemperatureCmd builds the raw command setting the heater target.
func TemperatureCmd(temp int) string {
	return fmt.Sprintf("templevel %d", temp)
}
