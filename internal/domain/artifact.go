package domain

const DefaultArtifactMimeType = "image/png"

// GenerationArtifact is a rendered illustration as returned by the image
// model: base64 payload plus media type.
type GenerationArtifact struct {
	ImageBase64 string `json:"image"`
	MimeType    string `json:"mimeType"`
}

func NewGenerationArtifact(imageBase64, mimeType string) *GenerationArtifact {
	if mimeType == "" {
		mimeType = DefaultArtifactMimeType
	}
	return &GenerationArtifact{
		ImageBase64: imageBase64,
		MimeType:    mimeType,
	}
}
