package model

import (
	"strings"
)

// MemberID identifies a member.
type MemberID string

// ImageID identifies a stored image.
type ImageID string

// Gender of a member as exposed by a gender reveal.
type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderUnknown Gender = "UNKNOWN"
)

// ParseGender maps s to a Gender; anything unrecognised is GenderUnknown.
func ParseGender(s string) Gender {
	switch g := Gender(strings.ToUpper(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale:
		return g
	default:
		return GenderUnknown
	}
}

// Platform is the member's track within the community.
type Platform string

const (
	PlatformSpring  Platform = "SPRING"
	PlatformWeb     Platform = "WEB"
	PlatformNode    Platform = "NODE"
	PlatformAndroid Platform = "ANDROID"
	PlatformIOS     Platform = "IOS"
	PlatformDesign  Platform = "DESIGN"
	PlatformUnknown Platform = "UNKNOWN"
)

// ParsePlatform maps s to a Platform; anything unrecognised is PlatformUnknown.
func ParsePlatform(s string) Platform {
	switch p := Platform(strings.ToUpper(strings.TrimSpace(s))); p {
	case PlatformSpring, PlatformWeb, PlatformNode, PlatformAndroid, PlatformIOS, PlatformDesign:
		return p
	default:
		return PlatformUnknown
	}
}

// Member is the profile view the pick engine reads from the member directory.
type Member struct {
	ID             MemberID
	FullName       string
	ProfileImageID ImageID
	Platform       Platform
	Ordinal        int
	Gender         Gender
}

// SecondInitialName returns the second character of the full name, or "" for
// names shorter than two characters.
func (m Member) SecondInitialName() string {
	runes := []rune(m.FullName)
	if len(runes) < 2 {
		return ""
	}
	return string(runes[1])
}
