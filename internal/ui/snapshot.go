package ui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/evonic/pkg/evonic"
)

// Output formats accepted by FormatSnapshot
const (
	FormatDetailed = "detailed"
	FormatCompact  = "compact"
	FormatJSON     = "json"
)

const unknown = "unknown"

// FormatSnapshot renders a snapshot in one of the supported formats.
func FormatSnapshot(s *evonic.Snapshot, format string, width int) (string, error) {
	switch format {
	case FormatDetailed, "":
		return RenderSnapshot(s, width), nil
	case FormatCompact:
		return FormatCompactSnapshot(s), nil
	case FormatJSON:
		data, err := FormatJSONSnapshot(s)
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	}
	return "", fmt.Errorf("unknown format %q (must be %s, %s or %s)", format, FormatDetailed, FormatCompact, FormatJSON)
}

// FormatJSONSnapshot returns the snapshot as indented JSON.
func FormatJSONSnapshot(s *evonic.Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// RenderSnapshot renders the bordered, sectioned view used by `show` and `watch`.
func RenderSnapshot(s *evonic.Snapshot, width int) string {
	width = clampWidth(width)
	if s == nil {
		return PanelStyle(width).Render(OffStyle.Render("No state received yet"))
	}

	sections := []string{
		section("Fire",
			field("Power", onOff(s.Lighting.On)),
			field("Effect", str(s.Lighting.Effect)),
			field("Feature light", onOff(s.Lighting.FeatureLight)),
			field("Flame", zone(s.Lighting.FlameBrightness, s.Lighting.FlameSpeed)),
			field("Coal bed", zone(s.Lighting.CoalBrightness, s.Lighting.CoalSpeed)),
		),
	}

	if s.Info.HasModule(evonic.ModuleTemperature) {
		unit := tempUnit(&s.Info)
		sections = append(sections, section("Heater",
			field("Heating", onOff(s.Climate.Heating)),
			field("Room", temp(s.Climate.CurrentTemp, unit)),
			field("Target", temp(s.Climate.TargetTemp, unit)),
		))
	}

	sections = append(sections,
		section("Device",
			field("Product", str(s.Info.Product)),
			field("Model", fmt.Sprintf("%s (%s)", orUnknown(s.Info.ConfigCode()), evonic.ModelFamily(s.Info.ConfigCode()))),
			field("Firmware build", str(s.Info.BuildData)),
			field("Modules", list(s.Info.Modules)),
			field("Last ping", str(s.Info.LastPing)),
		),
		section("Network",
			field("IP", str(s.Network.IP)),
			field("Subnet", str(s.Network.Subnet)),
			field("SSID", str(s.Network.SSID)),
			field("Signal", signal(s.Network.SignalStrength)),
			field("MAC", str(s.Network.MAC)),
		),
		section("Effects", lipgloss.NewStyle().Width(width-6).Render(list(s.Effects))),
	)

	return PanelStyle(width).Render(strings.Join(sections, "\n\n"))
}

// FormatCompactSnapshot returns a short multi-line summary.
func FormatCompactSnapshot(s *evonic.Snapshot) string {
	if s == nil {
		return "No state received yet\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Fire:    %s  effect=%s  light=%s\n",
		plainOnOff(s.Lighting.On), str(s.Lighting.Effect), plainOnOff(s.Lighting.FeatureLight))
	if s.Info.HasModule(evonic.ModuleTemperature) {
		unit := tempUnit(&s.Info)
		fmt.Fprintf(&b, "Heater:  %s -> %s (%s)\n",
			temp(s.Climate.CurrentTemp, unit), temp(s.Climate.TargetTemp, unit), heating(s.Climate.Heating))
	}
	fmt.Fprintf(&b, "Zones:   flame %s  coal %s\n",
		zone(s.Lighting.FlameBrightness, s.Lighting.FlameSpeed), zone(s.Lighting.CoalBrightness, s.Lighting.CoalSpeed))
	fmt.Fprintf(&b, "Device:  %s @ %s\n", orUnknown(s.Info.ConfigCode()), str(s.Network.IP))
	return b.String()
}

// FormatUpdateLine renders one timestamped line per update for `listen`.
func FormatUpdateLine(at time.Time, s *evonic.Snapshot) string {
	if s == nil {
		return at.Format("15:04:05") + " (no state)"
	}

	parts := []string{
		at.Format("15:04:05"),
		"fire=" + plainOnOff(s.Lighting.On),
		"effect=" + str(s.Lighting.Effect),
	}
	if s.Info.HasModule(evonic.ModuleTemperature) {
		unit := tempUnit(&s.Info)
		parts = append(parts,
			"temp="+temp(s.Climate.CurrentTemp, unit),
			"target="+temp(s.Climate.TargetTemp, unit),
			"heater="+heating(s.Climate.Heating),
		)
	}
	parts = append(parts,
		"flame="+zone(s.Lighting.FlameBrightness, s.Lighting.FlameSpeed),
		"coal="+zone(s.Lighting.CoalBrightness, s.Lighting.CoalSpeed),
	)
	return strings.Join(parts, " ")
}

func section(title string, lines ...string) string {
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{SectionTitleStyle.Render(title)}, lines...)...)
}

func field(key, value string) string {
	return FieldKeyStyle.Render("  "+key) + FieldValueStyle.Render(value)
}

func str(p *string) string {
	if p == nil || *p == "" {
		return unknown
	}
	return *p
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

func onOff(p *bool) string {
	if p == nil {
		return OffStyle.Render(unknown)
	}
	if *p {
		return OnStyle.Render("on")
	}
	return OffStyle.Render("off")
}

func plainOnOff(p *bool) string {
	switch {
	case p == nil:
		return unknown
	case *p:
		return "on"
	default:
		return "off"
	}
}

func heating(p *bool) string {
	switch {
	case p == nil:
		return unknown
	case *p:
		return "heating"
	default:
		return "idle"
	}
}

func tempUnit(i *evonic.DeviceInfo) string {
	if i.IsFahrenheit() {
		return "°F"
	}
	return "°C"
}

func temp(p *int, unit string) string {
	if p == nil {
		return unknown
	}
	return strconv.Itoa(*p) + unit
}

// zone renders brightness/speed
func zone(brightness, speed *int) string {
	b, s := "?", "?"
	if brightness != nil {
		b = strconv.Itoa(*brightness)
	}
	if speed != nil {
		s = strconv.Itoa(*speed)
	}
	return b + "/" + s
}

func signal(p *string) string {
	if p == nil || *p == "" {
		return unknown
	}
	return *p + " dBm"
}

func list(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
