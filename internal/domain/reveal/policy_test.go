package reveal

import (
	"errors"
	"testing"

	"github.com/okian/dojo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPolicy(t *testing.T) {
	images := ProfileImages{Male: "male.png", Female: "female.png", Unknown: "unknown.png"}
	picker := Profile{
		Member: model.Member{
			ID: "m1", FullName: "이서연", Gender: model.GenderFemale, Platform: model.PlatformWeb, Ordinal: 6,
		},
		ProfileImageURL: "profile.png",
	}

	Convey("Given a default policy", t, func() {
		p := New(WithProfileImages(images), WithPlatformImages(map[model.Platform]string{model.PlatformWeb: "web.png"}))

		Convey("Then every item has its default cost", func() {
			for item, want := range defaultCosts {
				cost, err := p.Cost(item)
				So(err, ShouldBeNil)
				So(cost, ShouldEqual, want)
			}
			_, err := p.Cost(model.RevealItem(0))
			So(errors.Is(err, model.ErrInvalidRevealItem), ShouldBeTrue)
		})

		Convey("When gender is revealed", func() {
			r, err := p.Reveal(model.RevealGender, picker)
			So(err, ShouldBeNil)
			So(r, ShouldResemble, Revealed{Item: model.RevealGender, Value: "FEMALE", ImageURL: "female.png"})
		})

		Convey("When platform is revealed", func() {
			r, err := p.Reveal(model.RevealPlatform, picker)
			So(err, ShouldBeNil)
			So(r.Value, ShouldEqual, "WEB")
			So(r.ImageURL, ShouldEqual, "web.png")

			Convey("Then a platform without an image yields an empty image", func() {
				other := picker
				other.Member.Platform = model.PlatformIOS
				r, err := p.Reveal(model.RevealPlatform, other)
				So(err, ShouldBeNil)
				So(r.ImageURL, ShouldBeEmpty)
			})
		})

		Convey("When the mid initial is revealed", func() {
			r, err := p.Reveal(model.RevealMidInitialName, picker)
			So(err, ShouldBeNil)
			So(r.Value, ShouldEqual, "서")
			So(r.ImageURL, ShouldBeEmpty)
		})

		Convey("When the full name is revealed", func() {
			r, err := p.Reveal(model.RevealFullName, picker)
			So(err, ShouldBeNil)
			So(r.Value, ShouldEqual, "이서연")
			So(r.ImageURL, ShouldEqual, "profile.png")

			Convey("Then a missing profile image falls back to unknown", func() {
				noImage := picker
				noImage.ProfileImageURL = ""
				r, err := p.Reveal(model.RevealFullName, noImage)
				So(err, ShouldBeNil)
				So(r.ImageURL, ShouldEqual, "unknown.png")
			})
		})

		Convey("When an invalid item is revealed", func() {
			_, err := p.Reveal(model.RevealItem(42), picker)
			So(errors.Is(err, model.ErrInvalidRevealItem), ShouldBeTrue)
		})
	})

	Convey("Given cost overrides", t, func() {
		p := New(
			WithCosts(map[model.RevealItem]int64{model.RevealGender: 5}),
			WithCost(model.RevealFullName, 999),
			WithCost(model.RevealPlatform, -1),
		)

		Convey("Then valid overrides apply and negative ones are ignored", func() {
			So(p.Costs()[model.RevealGender], ShouldEqual, 5)
			So(p.Costs()[model.RevealFullName], ShouldEqual, 999)
			So(p.Costs()[model.RevealPlatform], ShouldEqual, defaultCosts[model.RevealPlatform])
		})

		Convey("Then the returned map is a copy", func() {
			costs := p.Costs()
			costs[model.RevealGender] = 0
			cost, _ := p.Cost(model.RevealGender)
			So(cost, ShouldEqual, 5)
		})
	})

	Convey("Given the gender avatars", t, func() {
		So(images.ForGender(model.GenderMale), ShouldEqual, "male.png")
		So(images.ForGender(model.GenderUnknown), ShouldEqual, "unknown.png")
		So(images.ForGender(""), ShouldEqual, "unknown.png")
	})
}
