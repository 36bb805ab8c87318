package domain

// Photo is the single input of a generation request. It is created when the
// upload is received, consumed once by the analyzer, and discarded.
type Photo struct {
	Data     []byte
	MimeType string
	Size     int64
}

var allowedPhotoTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
}

func IsSupportedPhotoType(mimeType string) bool {
	return allowedPhotoTypes[mimeType]
}

func (p *Photo) IsEmpty() bool {
	return p == nil || len(p.Data) == 0
}
