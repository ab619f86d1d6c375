package evonic

import (
	"reflect"
	"testing"
)

func TestEffectsFor(t *testing.T) {
	tests := []struct {
		configs string
		want    []string
	}{
		{
			configs: "v630",
			want: []string{"Eos", "Vero", "Ignite", "Breathe", "Spectrum", "Embers", "Odyssey",
				"Aurora", "Red", "Orange", "Green", "Blue", "Violet", "White"},
		},
		{
			configs: "e1030",
			want:    []string{"Evoflame", "Party"},
		},
		{
			configs: "alisio850",
			want:    []string{"Ilusion", "Aurora", "Patriot", "Verona", "Charm", "Viva", "Cocktail", "Campfire"},
		},
		{
			configs: "sl1000",
			want:    []string{"Ignite", "Fiesta"},
		},
		{
			configs: "video",
			want:    []string{"Low", "Medium", "High"},
		},
		{
			configs: "unknown",
			want: []string{"Vero", "Ignite", "Breathe", "Spectrum", "Embers", "Odyssey",
				"Aurora", "Red", "Orange", "Green", "Blue", "Violet", "White"},
		},
		{
			configs: "",
			want: []string{"Vero", "Ignite", "Breathe", "Spectrum", "Embers", "Odyssey",
				"Aurora", "Red", "Orange", "Green", "Blue", "Violet", "White"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.configs, func(t *testing.T) {
			got := EffectsFor(tt.configs)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("EffectsFor(%q) = %v, want %v", tt.configs, got, tt.want)
			}
		})
	}
}

func TestEffectsFor_ReturnsFreshSlice(t *testing.T) {
	a := EffectsFor("e500")
	a[0] = "changed"

	if b := EffectsFor("e500"); b[0] != "Evoflame" {
		t.Errorf("EffectsFor() shares storage between calls, got %q", b[0])
	}

	c := EffectsFor("")
	c[0] = "changed"
	if d := EffectsFor("v730"); d[1] != "Vero" {
		t.Errorf("EffectsFor() mutated the default catalog, got %q", d[1])
	}
}

func TestModelFamily(t *testing.T) {
	tests := map[string]string{
		"v630":     "extended",
		"halev4":   "extended",
		"ilusion2": "ilusion",
		"alente":   "evoflame",
		"sl600":    "slimline",
		"video":    "video",
		"e9999":    "default",
	}

	for configs, want := range tests {
		if got := ModelFamily(configs); got != want {
			t.Errorf("ModelFamily(%q) = %q, want %q", configs, got, want)
		}
	}
}

func TestRefreshEffects(t *testing.T) {
	if err := RefreshEffects(nil); !IsPreconditionError(err) {
		t.Errorf("RefreshEffects(nil) error = %v, want precondition error", err)
	}

	s := ApplyUpdate(nil, mustDecode(t, `{"configs": "sl700"}`))
	if err := RefreshEffects(s); err != nil {
		t.Fatalf("RefreshEffects() error = %v", err)
	}
	if !reflect.DeepEqual(s.Effects, []string{"Ignite", "Fiesta"}) {
		t.Errorf("Effects = %v, want [Ignite Fiesta]", s.Effects)
	}
	if !s.HasEffect("Fiesta") || s.HasEffect("Vero") {
		t.Errorf("HasEffect() disagrees with Effects %v", s.Effects)
	}
}

func TestRefreshEffects_ExactModelCode(t *testing.T) {
	s := ApplyUpdate(nil, mustDecode(t, `{"configs": " v630"}`))
	if got := s.Info.ConfigCode(); got != " v630" {
		t.Errorf("ConfigCode() = %q, want it unchanged", got)
	}
	if err := RefreshEffects(s); err != nil {
		t.Fatalf("RefreshEffects() error = %v", err)
	}
	if !reflect.DeepEqual(s.Effects, EffectsFor("")) {
		t.Errorf("Effects = %v, want the default catalog for an unlisted code", s.Effects)
	}
}
