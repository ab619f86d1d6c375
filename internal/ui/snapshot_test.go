package ui

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/muurk/evonic/pkg/evonic"
)

func testSnapshot(t *testing.T) *evonic.Snapshot {
	t.Helper()
	u, err := evonic.DecodeUpdate([]byte(`{
		"ip": "192.168.1.190",
		"configs": "v630",
		"modules": ["temperature", "rgb0"],
		"fahrenheit": 0,
		"temperature": 21,
		"templevel": 23,
		"Heater": 1,
		"Fire": 1,
		"effect": "Vero",
		"brightnessRGB0": 200,
		"speedRGB0": 40
	}`))
	if err != nil {
		t.Fatalf("DecodeUpdate() error = %v", err)
	}
	s := evonic.ApplyUpdate(nil, u)
	if err := evonic.RefreshEffects(s); err != nil {
		t.Fatalf("RefreshEffects() error = %v", err)
	}
	return s
}

func TestRenderSnapshot(t *testing.T) {
	out := RenderSnapshot(testSnapshot(t), 80)

	for _, want := range []string{"Fire", "Vero", "Heater", "21°C", "23°C", "200/40", "v630 (extended)", "192.168.1.190", "Eos"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderSnapshot() missing %q\n%s", want, out)
		}
	}
}

func TestRenderSnapshot_NoHeater(t *testing.T) {
	s := testSnapshot(t)
	s.Info.Modules = []string{"rgb0"}

	if out := RenderSnapshot(s, 80); strings.Contains(out, "Heater") {
		t.Errorf("RenderSnapshot() shows heater section without the temperature module\n%s", out)
	}
}

func TestRenderSnapshot_Nil(t *testing.T) {
	if out := RenderSnapshot(nil, 80); !strings.Contains(out, "No state received yet") {
		t.Errorf("RenderSnapshot(nil) = %q", out)
	}
}

func TestFormatCompactSnapshot(t *testing.T) {
	got := FormatCompactSnapshot(testSnapshot(t))
	want := "Fire:    on  effect=Vero  light=unknown\n" +
		"Heater:  21°C -> 23°C (heating)\n" +
		"Zones:   flame 200/40  coal ?/?\n" +
		"Device:  v630 @ 192.168.1.190\n"

	if got != want {
		t.Errorf("FormatCompactSnapshot() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatUpdateLine(t *testing.T) {
	at := time.Date(2024, 1, 2, 18, 30, 5, 0, time.UTC)
	got := FormatUpdateLine(at, testSnapshot(t))
	want := "18:30:05 fire=on effect=Vero temp=21°C target=23°C heater=heating flame=200/40 coal=?/?"

	if got != want {
		t.Errorf("FormatUpdateLine() = %q, want %q", got, want)
	}
}

func TestFormatSnapshot(t *testing.T) {
	s := testSnapshot(t)

	out, err := FormatSnapshot(s, FormatJSON, 80)
	if err != nil {
		t.Fatalf("FormatSnapshot(json) error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("FormatSnapshot(json) is not valid JSON: %v", err)
	}
	lighting, _ := decoded["lighting"].(map[string]any)
	if lighting["effect"] != "Vero" {
		t.Errorf("lighting.effect = %v, want Vero", lighting["effect"])
	}

	if _, err := FormatSnapshot(s, "yaml", 80); err == nil {
		t.Error("FormatSnapshot(yaml) expected error, got nil")
	}
}
