package domain

import "fmt"

type SubjectRole string

const (
	RoleBride SubjectRole = "bride"
	RoleGroom SubjectRole = "groom"
)

func (r SubjectRole) String() string {
	return string(r)
}

// Attribute keys of the canonical post-normalization schema.
const (
	AttrHeight          = "height"
	AttrSkinColor       = "skin_color"
	AttrHairstyle       = "hairstyle"
	AttrEyeColor        = "eye_color"
	AttrBodyShape       = "body_shape"
	AttrFaceShape       = "face_shape"
	AttrSpectacles      = "spectacles"
	AttrFacialHairStyle = "facial_hair_style"
)

// Attribute wraps a single descriptive value. The wrapper object exists so
// alternates can be added later without breaking the schema; Primary is the
// only required field.
type Attribute struct {
	Primary string `json:"primary"`
}

// Subject maps attribute name to its value for one person in the photo.
type Subject map[string]Attribute

// AppearanceDescription is the bridge between the vision analyzer and the
// prompt composer: exactly the two keys "bride" and "groom".
type AppearanceDescription map[string]Subject

var commonAttributes = []string{
	AttrHeight,
	AttrSkinColor,
	AttrHairstyle,
	AttrEyeColor,
	AttrBodyShape,
	AttrFaceShape,
	AttrSpectacles,
}

// RequiredAttributes returns the attribute keys every subject of the given
// role must carry. The groom additionally carries facial_hair_style.
func RequiredAttributes(role SubjectRole) []string {
	if role == RoleGroom {
		return append(append([]string{}, commonAttributes...), AttrFacialHairStyle)
	}
	return append([]string{}, commonAttributes...)
}

// legacy analyzer-prompt field names rewritten to the canonical schema
var attributeAliases = map[string]string{
	"coloring":  AttrSkinColor,
	"body_type": AttrBodyShape,
}

// Normalize rewrites legacy attribute names in place so downstream consumers
// only ever see the canonical schema.
func (d AppearanceDescription) Normalize() {
	for _, subject := range d {
		for alias, canonical := range attributeAliases {
			if attr, ok := subject[alias]; ok {
				if _, exists := subject[canonical]; !exists {
					subject[canonical] = attr
				}
				delete(subject, alias)
			}
		}
	}
}

// Validate checks the post-normalization invariants: both subjects present,
// every required attribute present, no empty primary value.
func (d AppearanceDescription) Validate() error {
	for _, role := range []SubjectRole{RoleBride, RoleGroom} {
		subject, ok := d[role.String()]
		if !ok {
			return fmt.Errorf("missing subject %q", role)
		}
		for _, key := range RequiredAttributes(role) {
			attr, ok := subject[key]
			if !ok {
				return fmt.Errorf("subject %q missing attribute %q", role, key)
			}
			if attr.Primary == "" {
				return fmt.Errorf("subject %q attribute %q has empty primary value", role, key)
			}
		}
	}
	return nil
}

// Get returns the primary value for an attribute, or fallback when the
// attribute is absent or empty.
func (s Subject) Get(key, fallback string) string {
	if attr, ok := s[key]; ok && attr.Primary != "" {
		return attr.Primary
	}
	return fallback
}
