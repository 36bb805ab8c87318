package prompt

import (
	"fmt"
	"strings"

	"github.com/sankalpa/vivah-portrait-go/internal/domain"
)

// BuildEvaluationPrompt returns the fixed grading instruction for the vision
// model. The description the illustration was rendered from is included so
// attribute fidelity can be scored against it.
func BuildEvaluationPrompt(desc domain.AppearanceDescription) string {
	var b strings.Builder

	b.WriteString(`You are a strict quality inspector for wedding illustrations. Grade the attached image against the rules and rubric below.

## Hard rules (ANY violation means hard_rules_passed = false)
1. Exactly two characters; pure white background; no extra subjects, props, text, or watermarks; both fully visible head to toe.
2. Standing side-by-side, holding hands, both facing forward; no side profiles; no dynamic camera angles.
3. `)
	b.WriteString(GroomAttireLock)
	b.WriteString("\n4. ")
	b.WriteString(BrideAttireLock)
	b.WriteString("\n")
	b.WriteString(AttireVariationNote)
	b.WriteString("\n\n## Expected appearance (score fidelity against this)\n")
	writeExpectedAppearance(&b, desc)

	b.WriteString(`
## Scored rubric (integer points, respect every cap)
- attribute_fidelity: 0-5 per attribute across bride and groom, max 35
- pose_expression_culture: 0-5 each for pose, expression, cultural appropriateness, max 15
- style_compliance: 0-10 each for Ghibli-inspired rendering and painterly soft shading, max 20
- rendering_quality: 0-5 each for anatomy, line work, color quality, max 15
- composition_balance: 0-10, max 10
- total_score: overall total, 0-100

## Response format (JSON ONLY, no markdown fences)
{
  "hard_rules_passed": true,
  "hard_rules_failed": [],
  "total_score": 0,
  "details": {
    "attribute_fidelity": 0,
    "pose_expression_culture": 0,
    "style_compliance": 0,
    "rendering_quality": 0,
    "composition_balance": 0
  },
  "issues": [],
  "recommendation": "ACCEPT or REJECT"
}`)

	return b.String()
}

func writeExpectedAppearance(b *strings.Builder, desc domain.AppearanceDescription) {
	labels := map[domain.SubjectRole]string{
		domain.RoleBride: "Bride",
		domain.RoleGroom: "Groom",
	}
	for _, role := range []domain.SubjectRole{domain.RoleBride, domain.RoleGroom} {
		subject := desc[role.String()]
		fmt.Fprintf(b, "%s:", labels[role])
		for _, key := range domain.RequiredAttributes(role) {
			fmt.Fprintf(b, " %s=%s;", key, subject.Get(key, neutralDefaults[key]))
		}
		b.WriteString("\n")
	}
}
