package evonic

import "testing"

func TestBuildVoiceMessage(t *testing.T) {
	got, err := BuildVoiceMessage(VoiceFireOn)
	if err != nil {
		t.Fatalf("BuildVoiceMessage() error = %v", err)
	}
	if string(got) != `{"voice":"Fire_ON"}` {
		t.Errorf("BuildVoiceMessage() = %s, want {\"voice\":\"Fire_ON\"}", got)
	}

	got, _ = BuildVoiceMessage(VoiceFireToggle)
	if string(got) != `{"voice":"Fire_ON/OFF"}` {
		t.Errorf("BuildVoiceMessage(toggle) = %s", got)
	}
}

func TestBuildCmdMessage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{TemperatureCmd(19), `{"cmd":"templevel 19"}`},
		{BrightnessCmd('0', 200), `{"cmd":"rgb set 0 - - 200 -"}`},
		{SpeedCmd('1', 40), `{"cmd":"rgb set 1 - 40 - -"}`},
	}

	for _, tt := range tests {
		got, err := BuildCmdMessage(tt.text)
		if err != nil {
			t.Errorf("BuildCmdMessage(%q) error = %v", tt.text, err)
			continue
		}
		if string(got) != tt.want {
			t.Errorf("BuildCmdMessage(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}
