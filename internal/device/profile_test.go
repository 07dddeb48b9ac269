package device

import "testing"

func TestProfileFor(t *testing.T) {
	tests := []struct {
		name       string
		deviceName string
		want       string
	}{
		{"a2", "DYNA2N5D3B0F", "A II"},
		{"wrgb2", "DYNWRGB12345", "WRGB II"},
		{"wrgb2 pro", "DYWPRO000001", "WRGB II Pro"},
		{"slim", "DYSL60ABC", "WRGB II Slim"},
		{"rgb beats plain c2 prefix", "DYNCRGB999", "C II RGB"},
		{"doser", "DYDOSED1234", "Doser"},
		{"doser short code", "DOSER99", "Doser"},
		{"tiny egg", "DYDDX", "Tiny Terrarium Egg"},
		{"lowercase advertisement", "dynwrgb12", "WRGB II"},
		{"unknown", "SOMEBULB", "Generic"},
		{"empty", "", "Generic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProfileFor(tt.deviceName)
			if got.Name != tt.want {
				t.Errorf("ProfileFor(%q) = %q, want %q", tt.deviceName, got.Name, tt.want)
			}
		})
	}
}

func TestProfileChannels(t *testing.T) {
	wrgb := ProfileFor("DYNWRGB1")
	id, ok := wrgb.HasChannel("green")
	if !ok || id != 1 {
		t.Errorf("green channel = (%d, %v), want (1, true)", id, ok)
	}
	if _, ok := wrgb.HasChannel("warm"); ok {
		t.Error("WRGB II should not have a warm channel")
	}

	// Name lookup is case-insensitive for CLI convenience.
	if _, ok := wrgb.HasChannel("RED"); !ok {
		t.Error("channel lookup should be case-insensitive")
	}

	if _, ok := wrgb.RGB(); !ok {
		t.Error("WRGB II should report RGB channels")
	}
	if _, ok := ProfileFor("DYNA2N").RGB(); ok {
		t.Error("A II should not report RGB channels")
	}
}

func TestDoserProfile(t *testing.T) {
	p := ProfileFor("DYDOSED42")
	if !p.Doser {
		t.Error("DYDOSED should resolve to a doser profile")
	}
	if len(p.Channels) != 0 {
		t.Errorf("doser profile has %d color channels, want 0", len(p.Channels))
	}
	if ProfileFor("DYNWRGB1").Doser {
		t.Error("WRGB II should not be a doser")
	}
}
