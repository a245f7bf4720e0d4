package chunking

import (
	"fmt"
	"strings"
)

// ProfileName identifies one of the fixed chunking profiles.
type ProfileName string

const (
	ProfileFormal ProfileName = "formal"
	ProfileSpoken ProfileName = "spoken"
)

// Profile holds the budgets that drive block breaking. Lengths are counted
// in runes.
type Profile struct {
	Name            ProfileName
	MaxChars        int
	MaxDuration     float64
	GapThreshold    float64
	MinContextChars int
	MinWords        int
	MinYieldChars   int
}

// Formal suits keynotes and webinars: measured delivery with deliberate pauses.
var Formal = Profile{
	Name:            ProfileFormal,
	MaxChars:        80,
	MaxDuration:     8.0,
	GapThreshold:    2.5,
	MinContextChars: 45,
	MinWords:        5,
	MinYieldChars:   20,
}

// Spoken suits interviews and podcasts, where a shorter pause already ends a thought.
var Spoken = Profile{
	Name:            ProfileSpoken,
	MaxChars:        80,
	MaxDuration:     8.0,
	GapThreshold:    1.5,
	MinContextChars: 45,
	MinWords:        5,
	MinYieldChars:   20,
}

// ParseProfileName accepts "formal" or "spoken" in any case.
func ParseProfileName(value string) (ProfileName, error) {
	switch ProfileName(strings.ToLower(strings.TrimSpace(value))) {
	case ProfileFormal:
		return ProfileFormal, nil
	case ProfileSpoken:
		return ProfileSpoken, nil
	default:
		return "", fmt.Errorf("unknown chunking profile %q", value)
	}
}

// LookupProfile returns the profile for name. Unknown names fall back to Spoken.
func LookupProfile(name ProfileName) Profile {
	if name == ProfileFormal {
		return Formal
	}
	return Spoken
}
