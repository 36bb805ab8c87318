package prompt

import (
	"fmt"
	"strings"

	"github.com/sankalpa/vivah-portrait-go/internal/domain"
)

// neutral substitutes for attributes the analyzer could not provide
var neutralDefaults = map[string]string{
	domain.AttrHeight:          "average",
	domain.AttrSkinColor:       "wheatish",
	domain.AttrHairstyle:       "neat classic style, dark",
	domain.AttrEyeColor:        "dark brown",
	domain.AttrBodyShape:       "average",
	domain.AttrFaceShape:       "oval",
	domain.AttrSpectacles:      "none",
	domain.AttrFacialHairStyle: "clean-shaven",
}

var subjectBlockLabels = []struct {
	key   string
	label string
}{
	{domain.AttrHeight, "height"},
	{domain.AttrSkinColor, "skin tone"},
	{domain.AttrHairstyle, "hairstyle"},
	{domain.AttrEyeColor, "eye color"},
	{domain.AttrBodyShape, "body shape"},
	{domain.AttrFaceShape, "face shape"},
	{domain.AttrSpectacles, "spectacles"},
	{domain.AttrFacialHairStyle, "facial hair"},
}

// BuildGenerationPrompt renders the image-model prompt from an appearance
// description. It is pure and deterministic: the same description always
// produces the same prompt, byte for byte.
func BuildGenerationPrompt(desc domain.AppearanceDescription) string {
	var b strings.Builder

	b.WriteString("Create a full-body, front-facing, painterly soft-shaded illustration with gentle outlines, a warm palette, and realistic proportions with slight stylization, in a Ghibli-inspired style.\n\n")

	b.WriteString("Hard constraints: exactly two people (one bride, one groom); no duplicates, reflections, or additional subjects; pure white background; no props, text, logos, or scenery; both visible head to toe.\n\n")

	writeSubjectBlock(&b, "Bride", desc[domain.RoleBride.String()], domain.RoleBride)
	writeSubjectBlock(&b, "Groom", desc[domain.RoleGroom.String()], domain.RoleGroom)

	b.WriteString("Pose: standing side-by-side, holding hands, both facing forward, joyful warm expressions, no side profiles, no dynamic angles.\n\n")

	b.WriteString(GroomAttireLock)
	b.WriteString("\n")
	b.WriteString(BrideAttireLock)
	b.WriteString("\n\n")

	b.WriteString("Output rules: render exactly two characters on a pure white background, no text anywhere in the image, both characters fully visible from head to toe.")

	return b.String()
}

func writeSubjectBlock(b *strings.Builder, title string, subject domain.Subject, role domain.SubjectRole) {
	fmt.Fprintf(b, "%s:\n", title)
	for _, entry := range subjectBlockLabels {
		if entry.key == domain.AttrFacialHairStyle && role != domain.RoleGroom {
			continue
		}
		value := subject.Get(entry.key, neutralDefaults[entry.key])
		fmt.Fprintf(b, "- %s: %s\n", entry.label, value)
	}
	b.WriteString("\n")
}
