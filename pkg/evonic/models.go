package evonic

import (
	"slices"
)

// NetworkInfo describes how the fire is attached to the local network.
type NetworkInfo struct {
	IP             *string `json:"ip"`
	Subnet         *string `json:"subnet"`
	SSID           *string `json:"ssid_ap"`
	SignalStrength *string `json:"signal_strength"` // dBm as reported by the firmware
	MAC            *string `json:"mac"`
}

// DeviceInfo holds identification and capability metadata.
type DeviceInfo struct {
	Product    *string  `json:"product"`
	Configs    *string  `json:"configs"` // Model/configuration code (e.g. "v630", "e1030")
	BuildData  *string  `json:"build_data"`
	Fahrenheit *bool    `json:"fahrenheit"`
	LastPing   *string  `json:"last_ping"`
	Modules    []string `json:"modules"` // Installed feature modules (e.g. "light_box", "temperature")
	SSDPID     *string  `json:"ssdp_id"`
	Email      *string  `json:"email"`
}

// ClimateState is the heater part of the fire.
type ClimateState struct {
	CurrentTemp *int  `json:"current_temp"`
	TargetTemp  *int  `json:"target_temp"`
	Heating     *bool `json:"heating"`
	Fahrenheit  *bool `json:"fahrenheit"`
}

// LightingState is the flame effect and its RGB zones.
type LightingState struct {
	On              *bool   `json:"on"`
	Effect          *string `json:"effect"`
	FeatureLight    *bool   `json:"feature_light"`
	FlameBrightness *int    `json:"flame_brightness"`
	FlameSpeed      *int    `json:"flame_speed"`
	CoalBrightness  *int    `json:"coal_brightness"`
	CoalSpeed       *int    `json:"coal_speed"`
}

// Snapshot is the merged, last-known state of one fire.
//
// A Snapshot is created on the first payload received from the device and then only
// mutated in place by ApplyUpdate, so a pointer obtained from the Client stays valid
// for the lifetime of the Client.
type Snapshot struct {
	Network  NetworkInfo   `json:"network"`
	Info     DeviceInfo    `json:"info"`
	Climate  ClimateState  `json:"climate"`
	Lighting LightingState `json:"lighting"`
	Effects  []string      `json:"effects"`
}

// ConfigCode returns the model code, or "" when the device has not reported one.
func (i *DeviceInfo) ConfigCode() string {
	if i.Configs == nil {
		return ""
	}
	return *i.Configs
}

// HasModule reports whether a feature module is installed.
func (i *DeviceInfo) HasModule(name string) bool {
	return slices.Contains(i.Modules, name)
}

// IsFahrenheit reports whether the fire is configured for Fahrenheit.
func (i *DeviceInfo) IsFahrenheit() bool {
	return i.Fahrenheit != nil && *i.Fahrenheit
}

// HasEffect reports whether an effect is in the current catalog.
func (s *Snapshot) HasEffect(name string) bool {
	return slices.Contains(s.Effects, name)
}

// Clone returns a deep copy that is safe to hand to another goroutine.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := &Snapshot{
		Network: NetworkInfo{
			IP:             clonePtr(s.Network.IP),
			Subnet:         clonePtr(s.Network.Subnet),
			SSID:           clonePtr(s.Network.SSID),
			SignalStrength: clonePtr(s.Network.SignalStrength),
			MAC:            clonePtr(s.Network.MAC),
		},
		Info: DeviceInfo{
			Product:    clonePtr(s.Info.Product),
			Configs:    clonePtr(s.Info.Configs),
			BuildData:  clonePtr(s.Info.BuildData),
			Fahrenheit: clonePtr(s.Info.Fahrenheit),
			LastPing:   clonePtr(s.Info.LastPing),
			Modules:    slices.Clone(s.Info.Modules),
			SSDPID:     clonePtr(s.Info.SSDPID),
			Email:      clonePtr(s.Info.Email),
		},
		Climate: ClimateState{
			CurrentTemp: clonePtr(s.Climate.CurrentTemp),
			TargetTemp:  clonePtr(s.Climate.TargetTemp),
			Heating:     clonePtr(s.Climate.Heating),
			Fahrenheit:  clonePtr(s.Climate.Fahrenheit),
		},
		Lighting: LightingState{
			On:              clonePtr(s.Lighting.On),
			Effect:          clonePtr(s.Lighting.Effect),
			FeatureLight:    clonePtr(s.Lighting.FeatureLight),
			FlameBrightness: clonePtr(s.Lighting.FlameBrightness),
			FlameSpeed:      clonePtr(s.Lighting.FlameSpeed),
			CoalBrightness:  clonePtr(s.Lighting.CoalBrightness),
			CoalSpeed:       clonePtr(s.Lighting.CoalSpeed),
		},
		Effects: slices.Clone(s.Effects),
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
