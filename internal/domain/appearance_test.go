package domain

import "testing"

func validDescription() AppearanceDescription {
	bride := Subject{}
	for _, key := range RequiredAttributes(RoleBride) {
		bride[key] = Attribute{Primary: "x"}
	}
	groom := Subject{}
	for _, key := range RequiredAttributes(RoleGroom) {
		groom[key] = Attribute{Primary: "x"}
	}
	return AppearanceDescription{"bride": bride, "groom": groom}
}

func TestNormalizeRewritesLegacyNames(t *testing.T) {
	desc := AppearanceDescription{
		"bride": {
			"coloring":  {Primary: "fair"},
			"body_type": {Primary: "slim"},
		},
	}

	desc.Normalize()

	bride := desc["bride"]
	if _, ok := bride["coloring"]; ok {
		t.Error("legacy key coloring should be removed")
	}
	if _, ok := bride["body_type"]; ok {
		t.Error("legacy key body_type should be removed")
	}
	if got := bride.Get(AttrSkinColor, ""); got != "fair" {
		t.Errorf("skin_color = %q, want fair", got)
	}
	if got := bride.Get(AttrBodyShape, ""); got != "slim" {
		t.Errorf("body_shape = %q, want slim", got)
	}
}

func TestNormalizeKeepsCanonicalValueOnConflict(t *testing.T) {
	desc := AppearanceDescription{
		"groom": {
			"coloring":    {Primary: "legacy"},
			AttrSkinColor: {Primary: "canonical"},
		},
	}

	desc.Normalize()

	if got := desc["groom"].Get(AttrSkinColor, ""); got != "canonical" {
		t.Errorf("skin_color = %q, canonical value must win", got)
	}
}

func TestValidateAcceptsCompleteDescription(t *testing.T) {
	if err := validDescription().Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateRejectsMissingSubject(t *testing.T) {
	desc := validDescription()
	delete(desc, "groom")

	if err := desc.Validate(); err == nil {
		t.Error("expected error for missing groom")
	}
}

func TestValidateRejectsMissingAttribute(t *testing.T) {
	desc := validDescription()
	delete(desc["groom"], AttrFacialHairStyle)

	if err := desc.Validate(); err == nil {
		t.Error("expected error for missing facial_hair_style")
	}
}

func TestValidateRejectsEmptyPrimary(t *testing.T) {
	desc := validDescription()
	desc["bride"][AttrEyeColor] = Attribute{}

	if err := desc.Validate(); err == nil {
		t.Error("expected error for empty primary value")
	}
}

func TestFacialHairIsGroomOnly(t *testing.T) {
	for _, key := range RequiredAttributes(RoleBride) {
		if key == AttrFacialHairStyle {
			t.Error("bride must not require facial_hair_style")
		}
	}
}

func TestSubjectGetFallback(t *testing.T) {
	s := Subject{AttrHeight: {Primary: "tall"}, AttrEyeColor: {}}

	if got := s.Get(AttrHeight, "average"); got != "tall" {
		t.Errorf("present attribute: got %q", got)
	}
	if got := s.Get(AttrBodyShape, "average"); got != "average" {
		t.Errorf("absent attribute: got %q", got)
	}
	if got := s.Get(AttrEyeColor, "dark brown"); got != "dark brown" {
		t.Errorf("empty attribute: got %q", got)
	}
}
