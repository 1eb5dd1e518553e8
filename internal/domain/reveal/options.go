package reveal

import "github.com/okian/dojo/internal/domain/model"

var defaultCosts = map[model.RevealItem]int64{
	model.RevealGender:         50,
	model.RevealPlatform:       50,
	model.RevealMidInitialName: 100,
	model.RevealFullName:       200,
}

// Option applies a configuration option to the Policy.
type Option func(*Policy)

// WithCost sets the price of one item. Negative costs are ignored.
func WithCost(item model.RevealItem, cost int64) Option {
	return func(p *Policy) {
		if item.Valid() && cost >= 0 {
			p.costs[item] = cost
		}
	}
}

// WithCosts sets several item prices at once.
func WithCosts(costs map[model.RevealItem]int64) Option {
	return func(p *Policy) {
		for item, cost := range costs {
			WithCost(item, cost)(p)
		}
	}
}

// WithProfileImages sets the gender avatars.
func WithProfileImages(images ProfileImages) Option {
	return func(p *Policy) {
		p.profileImages = images
	}
}

// WithPlatformImages sets the per-platform images.
func WithPlatformImages(images map[model.Platform]string) Option {
	return func(p *Policy) {
		for platform, url := range images {
			p.platformImages[platform] = url
		}
	}
}
