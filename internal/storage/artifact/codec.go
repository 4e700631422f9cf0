package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/yndnr/imgcarve/pkg/carve"
)

// Image is a decoded image that can be saved in a chosen format.
type Image interface {
	Save(path string, f carve.Format) error
}

// Codec decodes segment bytes into an Image.
type Codec interface {
	Decode(data []byte) (Image, error)
}

// StdCodec is the Codec backed by the standard library decoders.
//
// The input format is sniffed from the data itself, not from the segment
// tag. Animated GIFs keep all their frames when saved as GIF.
type StdCodec struct {
	// JPEGQuality is used when saving JPG; zero means jpeg.DefaultQuality.
	JPEGQuality int
}

// Decode implements Codec.
func (c StdCodec) Decode(data []byte) (Image, error) {
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if name == "gif" {
		anim, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if len(anim.Image) == 0 {
			return nil, errors.New("gif: no frames")
		}
		return &stdImage{img: anim.Image[0], anim: anim, quality: c.JPEGQuality}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &stdImage{img: img, quality: c.JPEGQuality}, nil
}

type stdImage struct {
	img     image.Image
	anim    *gif.GIF
	quality int
}

// Save implements Image. It truncates or creates path.
func (s *stdImage) Save(path string, f carve.Format) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	switch f {
	case carve.FormatPNG:
		return png.Encode(file, s.img)
	case carve.FormatJPG:
		q := s.quality
		if q <= 0 {
			q = jpeg.DefaultQuality
		}
		return jpeg.Encode(file, s.img, &jpeg.Options{Quality: q})
	case carve.FormatGIF:
		if s.anim != nil {
			return gif.EncodeAll(file, s.anim)
		}
		return gif.Encode(file, s.img, nil)
	default:
		return fmt.Errorf("no encoder for format %s", f)
	}
}
