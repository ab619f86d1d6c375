package evonic

import "slices"

// defaultEffects is the catalog shared by most models.
var defaultEffects = []string{
	"Vero", "Ignite", "Breathe", "Spectrum", "Embers", "Odyssey", "Aurora",
	"Red", "Orange", "Green", "Blue", "Violet", "White",
}

// effectRule adjusts the catalog for one model family.
type effectRule struct {
	family  string
	configs []string
	prepend []string // Added in front of the default catalog
	replace []string // Replaces the catalog entirely
}

// effectRules are checked in order; the first family containing the model code wins.
var effectRules = []effectRule{
	{
		family: "extended",
		configs: []string{
			"1800", "ds1030", "hal800", "hal1030", "hal1500", "hal2400",
			"halev4", "halev8", "irpanel", "v630", "v730", "v1030",
		},
		prepend: []string{"Eos"},
	},
	{
		family:  "ilusion",
		configs: []string{"ilusion2", "alisio1150", "alisio1550", "alisio1850", "alisio850"},
		replace: []string{"Ilusion", "Aurora", "Patriot", "Verona", "Charm", "Viva", "Cocktail", "Campfire"},
	},
	{
		family:  "evoflame",
		configs: []string{"alente", "e1030", "e1250", "e1500", "e1800", "e2400", "e500", "e800"},
		replace: []string{"Evoflame", "Party"},
	},
	{
		family:  "slimline",
		configs: []string{"sl600", "sl700", "sl1000", "sl1250", "sl1500"},
		replace: []string{"Ignite", "Fiesta"},
	},
	{
		family:  "video",
		configs: []string{"video"},
		replace: []string{"Low", "Medium", "High"},
	},
}

// EffectsFor returns the effect catalog for a model code. The result is a fresh slice.
func EffectsFor(configs string) []string {
	for _, rule := range effectRules {
		if !slices.Contains(rule.configs, configs) {
			continue
		}
		if rule.replace != nil {
			return slices.Clone(rule.replace)
		}
		return append(slices.Clone(rule.prepend), defaultEffects...)
	}
	return slices.Clone(defaultEffects)
}

// ModelFamily names the effect family a model code belongs to, or "default".
func ModelFamily(configs string) string {
	for _, rule := range effectRules {
		if slices.Contains(rule.configs, configs) {
			return rule.family
		}
	}
	return "default"
}

// RefreshEffects recomputes the snapshot's catalog from its model code.
func RefreshEffects(s *Snapshot) error {
	if s == nil {
		return errUninitialized()
	}
	s.Effects = EffectsFor(s.Info.ConfigCode())
	return nil
}

func errUninitialized() *Error {
	return NewPreconditionError("no device initialised")
}
