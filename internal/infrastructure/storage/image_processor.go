package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Variant is a named bounding box for a resized copy.
type Variant struct {
	Name string
	Size int
}

// DefaultVariants are the sizes generated for every imported asset.
var DefaultVariants = []Variant{
	{Name: "large", Size: 1200},
	{Name: "medium", Size: 600},
	{Name: "thumbnail", Size: 300},
}

type ImageProcessor struct {
	Variants []Variant
	Quality  int
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{Variants: DefaultVariants, Quality: 90}
}

// Dimensions decodes only the header of data.
func (p *ImageProcessor) Dimensions(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("not an image: %w", err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// ProcessImage fits data into each variant box and encodes JPEG.
func (p *ImageProcessor) ProcessImage(data []byte) (map[string][]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	variants := make(map[string][]byte, len(p.Variants))
	for _, v := range p.Variants {
		resized := imaging.Fit(img, v.Size, v.Size, imaging.Lanczos)
		b := new(bytes.Buffer)
		if err := jpeg.Encode(b, resized, &jpeg.Options{Quality: p.Quality}); err != nil {
			return nil, fmt.Errorf("cannot encode %s: %w", v.Name, err)
		}
		variants[v.Name] = b.Bytes()
	}
	return variants, nil
}
