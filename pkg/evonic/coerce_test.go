package evonic

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    int
		wantErr bool
	}{
		{name: "int", input: 21, want: 21},
		{name: "int64", input: int64(-3), want: -3},
		{name: "json number", input: json.Number("255"), want: 255},
		{name: "whole float", input: float64(19), want: 19},
		{name: "numeric string", input: "19", want: 19},
		{name: "padded string", input: " 42 ", want: 42},
		{name: "negative string", input: "-1", want: -1},
		{name: "fractional json number", input: json.Number("1.5"), wantErr: true},
		{name: "fractional float", input: 1.5, wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "word", input: "hot", wantErr: true},
		{name: "bool", input: true, wantErr: true},
		{name: "nil", input: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceInt(tt.input)
			if tt.wantErr {
				if !IsDecodeError(err) {
					t.Errorf("CoerceInt(%v) error = %v, want decode error", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CoerceInt(%v) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("CoerceInt(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		input   any
		want    bool
		wantErr bool
	}{
		{input: true, want: true},
		{input: false, want: false},
		{input: json.Number("1"), want: true},
		{input: json.Number("0"), want: false},
		{input: 1, want: true},
		{input: "on", want: true},
		{input: "OFF", want: false},
		{input: "true", want: true},
		{input: "0", want: false},
		{input: json.Number("3"), wantErr: true},
		{input: "maybe", wantErr: true},
		{input: []any{}, wantErr: true},
	}

	for _, tt := range tests {
		got, err := CoerceBool(tt.input)
		if tt.wantErr {
			if !IsDecodeError(err) {
				t.Errorf("CoerceBool(%v) error = %v, want decode error", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("CoerceBool(%v) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CoerceBool(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCoerceString(t *testing.T) {
	if got, _ := CoerceString(json.Number("-61")); got != "-61" {
		t.Errorf("CoerceString(json.Number) = %q, want -61", got)
	}
	if got, _ := CoerceString(7); got != "7" {
		t.Errorf("CoerceString(7) = %q, want 7", got)
	}
	if _, err := CoerceString(true); !IsDecodeError(err) {
		t.Errorf("CoerceString(true) error = %v, want decode error", err)
	}
}

func TestCoerceStringList(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []string
	}{
		{name: "array", input: []any{"rgb0", "rgb1"}, want: []string{"rgb0", "rgb1"}},
		{name: "comma string", input: "light_box, temperature,", want: []string{"light_box", "temperature"}},
		{name: "empty string", input: "", want: []string{}},
		{name: "string slice", input: []string{"a"}, want: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceStringList(tt.input)
			if err != nil {
				t.Fatalf("CoerceStringList() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CoerceStringList() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := CoerceStringList([]any{"ok", map[string]any{}}); !IsDecodeError(err) {
		t.Errorf("CoerceStringList(mixed) error = %v, want decode error", err)
	}
	if _, err := CoerceStringList(12); !IsDecodeError(err) {
		t.Errorf("CoerceStringList(12) error = %v, want decode error", err)
	}
}
