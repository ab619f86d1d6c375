package evonic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Field is one optional member of a partial update.
//
// Set reports whether the key was present in the payload. A present key with a
// nil Value is an explicit null and clears the destination field.
type Field[T any] struct {
	Set   bool
	Value *T
}

// Value returns a present field holding v.
func Value[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Null returns a present field with no value.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

func (f Field[T]) applyTo(dst **T) {
	if !f.Set {
		return
	}
	*dst = clonePtr(f.Value)
}

func applyList(f Field[[]string], dst *[]string) {
	if !f.Set {
		return
	}
	if f.Value == nil {
		*dst = nil
		return
	}
	*dst = slices.Clone(*f.Value)
}

// NetworkUpdate is a partial NetworkInfo.
type NetworkUpdate struct {
	IP             Field[string]
	Subnet         Field[string]
	SSID           Field[string]
	SignalStrength Field[string]
	MAC            Field[string]
}

// InfoUpdate is a partial DeviceInfo.
type InfoUpdate struct {
	Product    Field[string]
	Configs    Field[string]
	BuildData  Field[string]
	Fahrenheit Field[bool]
	LastPing   Field[string]
	Modules    Field[[]string]
	SSDPID     Field[string]
	Email      Field[string]
}

// ClimateUpdate is a partial ClimateState.
type ClimateUpdate struct {
	CurrentTemp Field[int]
	TargetTemp  Field[int]
	Heating     Field[bool]
	Fahrenheit  Field[bool]
}

// LightingUpdate is a partial LightingState.
type LightingUpdate struct {
	On              Field[bool]
	Effect          Field[string]
	FeatureLight    Field[bool]
	FlameBrightness Field[int]
	FlameSpeed      Field[int]
	CoalBrightness  Field[int]
	CoalSpeed       Field[int]
}

// Update is a decoded partial state document.
type Update struct {
	Network  NetworkUpdate
	Info     InfoUpdate
	Climate  ClimateUpdate
	Lighting LightingUpdate
	Effects  Field[[]string]
}

// Merge overwrites the fields present in u.
func (n *NetworkInfo) Merge(u NetworkUpdate) {
	u.IP.applyTo(&n.IP)
	u.Subnet.applyTo(&n.Subnet)
	u.SSID.applyTo(&n.SSID)
	u.SignalStrength.applyTo(&n.SignalStrength)
	u.MAC.applyTo(&n.MAC)
}

// Merge overwrites the fields present in u.
func (i *DeviceInfo) Merge(u InfoUpdate) {
	u.Product.applyTo(&i.Product)
	u.Configs.applyTo(&i.Configs)
	u.BuildData.applyTo(&i.BuildData)
	u.Fahrenheit.applyTo(&i.Fahrenheit)
	u.LastPing.applyTo(&i.LastPing)
	applyList(u.Modules, &i.Modules)
	u.SSDPID.applyTo(&i.SSDPID)
	u.Email.applyTo(&i.Email)
}

// Merge overwrites the fields present in u.
func (c *ClimateState) Merge(u ClimateUpdate) {
	u.CurrentTemp.applyTo(&c.CurrentTemp)
	u.TargetTemp.applyTo(&c.TargetTemp)
	u.Heating.applyTo(&c.Heating)
	u.Fahrenheit.applyTo(&c.Fahrenheit)
}

// Merge overwrites the fields present in u.
func (l *LightingState) Merge(u LightingUpdate) {
	u.On.applyTo(&l.On)
	u.Effect.applyTo(&l.Effect)
	u.FeatureLight.applyTo(&l.FeatureLight)
	u.FlameBrightness.applyTo(&l.FlameBrightness)
	u.FlameSpeed.applyTo(&l.FlameSpeed)
	u.CoalBrightness.applyTo(&l.CoalBrightness)
	u.CoalSpeed.applyTo(&l.CoalSpeed)
}

// ApplyUpdate merges u into s and returns s. A nil s yields a new Snapshot built from u.
func ApplyUpdate(s *Snapshot, u *Update) *Snapshot {
	if s == nil {
		s = &Snapshot{}
	}
	if u == nil {
		return s
	}
	s.Network.Merge(u.Network)
	s.Info.Merge(u.Info)
	s.Climate.Merge(u.Climate)
	s.Lighting.Merge(u.Lighting)
	applyList(u.Effects, &s.Effects)
	return s
}

// keyDecoder stores one wire value into an Update.
type keyDecoder func(u *Update, v any) error

func stringKey(sel func(*Update) *Field[string]) keyDecoder {
	return func(u *Update, v any) error {
		f, err := decodeField(v, CoerceString)
		if err != nil {
			return err
		}
		*sel(u) = f
		return nil
	}
}

func intKey(sel func(*Update) *Field[int]) keyDecoder {
	return func(u *Update, v any) error {
		f, err := decodeField(v, CoerceInt)
		if err != nil {
			return err
		}
		*sel(u) = f
		return nil
	}
}

func boolKey(sels ...func(*Update) *Field[bool]) keyDecoder {
	return func(u *Update, v any) error {
		f, err := decodeField(v, CoerceBool)
		if err != nil {
			return err
		}
		for _, sel := range sels {
			*sel(u) = f
		}
		return nil
	}
}

func listKey(sel func(*Update) *Field[[]string]) keyDecoder {
	return func(u *Update, v any) error {
		f, err := decodeField(v, CoerceStringList)
		if err != nil {
			return err
		}
		*sel(u) = f
		return nil
	}
}

func decodeField[T any](v any, coerce func(any) (T, error)) (Field[T], error) {
	if v == nil {
		return Null[T](), nil
	}
	t, err := coerce(v)
	if err != nil {
		return Field[T]{}, err
	}
	return Value(t), nil
}

// wireKeys maps the firmware's JSON keys onto Update fields.
var wireKeys = map[string]keyDecoder{
	"ip":      stringKey(func(u *Update) *Field[string] { return &u.Network.IP }),
	"subnet":  stringKey(func(u *Update) *Field[string] { return &u.Network.Subnet }),
	"ssidAP":  stringKey(func(u *Update) *Field[string] { return &u.Network.SSID }),
	"dbm":     stringKey(func(u *Update) *Field[string] { return &u.Network.SignalStrength }),
	"mac":     stringKey(func(u *Update) *Field[string] { return &u.Network.MAC }),
	"product": stringKey(func(u *Update) *Field[string] { return &u.Info.Product }),
	"configs": stringKey(func(u *Update) *Field[string] { return &u.Info.Configs }),
	"buildData": stringKey(func(u *Update) *Field[string] {
		return &u.Info.BuildData
	}),
	"fahrenheit": boolKey(
		func(u *Update) *Field[bool] { return &u.Info.Fahrenheit },
		func(u *Update) *Field[bool] { return &u.Climate.Fahrenheit },
	),
	"time":           stringKey(func(u *Update) *Field[string] { return &u.Info.LastPing }),
	"modules":        listKey(func(u *Update) *Field[[]string] { return &u.Info.Modules }),
	"ssdp":           stringKey(func(u *Update) *Field[string] { return &u.Info.SSDPID }),
	"email":          stringKey(func(u *Update) *Field[string] { return &u.Info.Email }),
	"temperature":    intKey(func(u *Update) *Field[int] { return &u.Climate.CurrentTemp }),
	"templevel":      intKey(func(u *Update) *Field[int] { return &u.Climate.TargetTemp }),
	"Heater":         boolKey(func(u *Update) *Field[bool] { return &u.Climate.Heating }),
	"Fire":           boolKey(func(u *Update) *Field[bool] { return &u.Lighting.On }),
	"effect":         stringKey(func(u *Update) *Field[string] { return &u.Lighting.Effect }),
	"pinout3":        boolKey(func(u *Update) *Field[bool] { return &u.Lighting.FeatureLight }),
	"brightnessRGB0": intKey(func(u *Update) *Field[int] { return &u.Lighting.FlameBrightness }),
	"speedRGB0":      intKey(func(u *Update) *Field[int] { return &u.Lighting.FlameSpeed }),
	"brightnessRGB1": intKey(func(u *Update) *Field[int] { return &u.Lighting.CoalBrightness }),
	"speedRGB1":      intKey(func(u *Update) *Field[int] { return &u.Lighting.CoalSpeed }),
	"available_effects": listKey(func(u *Update) *Field[[]string] {
		return &u.Effects
	}),
}

// DecodeUpdate decodes a full or partial JSON state document.
// Unknown keys are ignored; a value that cannot be coerced is a decode error.
func DecodeUpdate(data []byte) (*Update, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, NewDecodeError("state document is not a JSON object", err)
	}
	return decodeMap(raw)
}

func decodeMap(raw map[string]any) (*Update, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	u := &Update{}
	for _, k := range keys {
		decode, ok := wireKeys[k]
		if !ok {
			continue
		}
		if err := decode(u, raw[k]); err != nil {
			return nil, NewDecodeError(fmt.Sprintf("invalid value for %q", k), err)
		}
	}
	return u, nil
}
