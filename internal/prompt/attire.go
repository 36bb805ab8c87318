package prompt

// The attire lock is the creative contract of the service: every generation
// prompt and every evaluation rubric carries the same garment set, colors and
// embroidery motifs. Both templates read from these constants so the two
// prompts cannot drift apart.
const (
	GroomAttireLock = `Groom attire (fixed, do not vary): an ivory-cream sherwani with gold zardozi embroidery in paisley and floral vine motifs, a deep maroon silk dupatta draped over the left shoulder with a thin gold border, fitted cream churidar trousers, and tan leather mojari shoes with subtle gold threadwork.`

	BrideAttireLock = `Bride attire (fixed, do not vary): a deep red lehenga choli with dense gold zari embroidery in paisley, peacock and floral motifs, a matching red dupatta with a wide gold border draped over the head and shoulder, and traditional gold jewelry: maang tikka on the forehead, jhumka earrings, a layered gold necklace set, and gold bangles on both wrists.`

	AttireVariationNote = `Minor variation in embroidery detail is acceptable; garment types and base colors are not negotiable.`
)
