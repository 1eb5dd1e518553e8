// Package reveal maps a reveal item to the picker attribute it exposes and
// the coin cost of unlocking it.
package reveal

import (
	"fmt"

	"github.com/okian/dojo/internal/domain/model"
)

// ProfileImages are the fallback avatars shown per gender.
type ProfileImages struct {
	Male    string
	Female  string
	Unknown string
}

// ForGender returns the avatar for g, the unknown avatar for anything else.
func (p ProfileImages) ForGender(g model.Gender) string {
	switch g {
	case model.GenderMale:
		return p.Male
	case model.GenderFemale:
		return p.Female
	default:
		return p.Unknown
	}
}

// Profile is the picker as the policy sees it. ProfileImageURL is the already
// resolved profile image, empty when it could not be resolved.
type Profile struct {
	Member          model.Member
	ProfileImageURL string
}

// Revealed is the value and image disclosed by opening one item.
type Revealed struct {
	Item     model.RevealItem
	Value    string
	ImageURL string
}

// Policy holds per-item costs and display images. It is immutable after New.
type Policy struct {
	costs          map[model.RevealItem]int64
	profileImages  ProfileImages
	platformImages map[model.Platform]string
}

// New constructs a Policy with default costs, then applies opts.
func New(opts ...Option) *Policy {
	p := &Policy{
		costs:          make(map[model.RevealItem]int64, len(model.RevealItems)),
		platformImages: make(map[model.Platform]string),
	}
	for item, cost := range defaultCosts {
		p.costs[item] = cost
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cost returns the coin price of opening item.
func (p *Policy) Cost(item model.RevealItem) (int64, error) {
	cost, ok := p.costs[item]
	if !ok {
		return 0, fmt.Errorf("%w: %d", model.ErrInvalidRevealItem, uint8(item))
	}
	return cost, nil
}

// Costs returns a copy of every item's cost.
func (p *Policy) Costs() map[model.RevealItem]int64 {
	out := make(map[model.RevealItem]int64, len(p.costs))
	for k, v := range p.costs {
		out[k] = v
	}
	return out
}

// ProfileImages returns the configured gender avatars.
func (p *Policy) ProfileImages() ProfileImages { return p.profileImages }

// Reveal extracts the attribute item exposes from the picker's profile.
func (p *Policy) Reveal(item model.RevealItem, picker Profile) (Revealed, error) {
	m := picker.Member
	switch item {
	case model.RevealGender:
		return Revealed{Item: item, Value: string(m.Gender), ImageURL: p.profileImages.ForGender(m.Gender)}, nil
	case model.RevealPlatform:
		// An unconfigured platform has no image; that is not an error.
		return Revealed{Item: item, Value: string(m.Platform), ImageURL: p.platformImages[m.Platform]}, nil
	case model.RevealMidInitialName:
		return Revealed{Item: item, Value: m.SecondInitialName()}, nil
	case model.RevealFullName:
		img := picker.ProfileImageURL
		if img == "" {
			img = p.profileImages.Unknown
		}
		return Revealed{Item: item, Value: m.FullName, ImageURL: img}, nil
	default:
		return Revealed{}, fmt.Errorf("%w: %d", model.ErrInvalidRevealItem, uint8(item))
	}
}
