package device

import "strings"

// Channel names one color channel and its wire id. Profiles keep their
// channels in a stable order so that commands which iterate all channels
// (turn-on, turn-off) emit frames in a deterministic sequence.
type Channel struct {
	Name string
	ID   int
}

// Profile describes one Chihiros hardware model.
type Profile struct {
	// Name is the marketing name, for logs and CLI output.
	Name string

	// ModelCodes are the BLE advertisement name prefixes of this model.
	// A device calling itself "DYNA2NABCDEF" is an A II.
	ModelCodes []string

	// Channels are the color channels in display order.
	Channels []Channel

	// Doser marks dosing pumps, which speak the 165 command family.
	Doser bool
}

// HasChannel reports whether the profile carries a channel with the given
// name and returns its wire id.
func (p Profile) HasChannel(name string) (int, bool) {
	for _, ch := range p.Channels {
		if strings.EqualFold(ch.Name, name) {
			return ch.ID, true
		}
	}
	return 0, false
}

// RGB returns the wire ids of the red, green and blue channels. It reports
// false for single-color and white-only models.
func (p Profile) RGB() ([3]int, bool) {
	var ids [3]int
	for i, name := range []string{"red", "green", "blue"} {
		id, ok := p.HasChannel(name)
		if !ok {
			return ids, false
		}
		ids[i] = id
	}
	return ids, true
}

var (
	white     = []Channel{{"white", 0}}
	rgb       = []Channel{{"red", 0}, {"green", 1}, {"blue", 2}}
	whiteWarm = []Channel{{"white", 0}, {"warm", 1}}

	profiles = []Profile{
		{Name: "A II", ModelCodes: []string{"DYNA2", "DYNA2N"}, Channels: white},
		{Name: "C II", ModelCodes: []string{"DYNC2N"}, Channels: white},
		{Name: "C II RGB", ModelCodes: []string{"DYNCRGP", "DYNCRGB"}, Channels: rgb},
		{Name: "WRGB II", ModelCodes: []string{"DYNWRGB"}, Channels: rgb},
		{Name: "WRGB II Pro", ModelCodes: []string{"DYWPRO"}, Channels: rgb},
		{Name: "WRGB II Slim", ModelCodes: []string{"DYSILN", "DYSL30", "DYSL45", "DYSL60", "DYSL90", "DYSL12"}, Channels: rgb},
		{Name: "Universal WRGB", ModelCodes: []string{"DYUNWRG"}, Channels: rgb},
		{Name: "Z Light Tiny", ModelCodes: []string{"DYSSD"}, Channels: whiteWarm},
		{Name: "Tiny Terrarium Egg", ModelCodes: []string{"DYDD"}, Channels: []Channel{{"red", 0}, {"green", 1}}},
		{Name: "Commander 1", ModelCodes: []string{"DYCOM"}, Channels: white},
		{Name: "Commander 4", ModelCodes: []string{"DYLED"}, Channels: rgb},
		{Name: "Doser", ModelCodes: []string{"DYDOSED", "DYDOSE", "DOSER"}, Doser: true},
	}

	// Fallback accepts any device whose name matches no known model code.
	// RGB is the safest guess for unrecognized lights.
	Fallback = Profile{Name: "Generic", Channels: rgb}
)

// Profiles returns all built-in model profiles.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// ProfileFor resolves the advertised BLE name to a model profile. Longer
// model codes win over shorter ones so that "DYNCRGP" is not claimed by a
// hypothetical "DYNC" prefix. Unknown names get the Fallback profile.
func ProfileFor(deviceName string) Profile {
	best := Fallback
	bestLen := 0
	upper := strings.ToUpper(deviceName)
	for _, p := range profiles {
		for _, code := range p.ModelCodes {
			if len(code) > bestLen && strings.HasPrefix(upper, code) {
				best = p
				bestLen = len(code)
			}
		}
	}
	return best
}
