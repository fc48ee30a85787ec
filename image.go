package vkmesh

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Pixels is a tightly packed RGBA8 image, row after row with no padding.
type Pixels struct {
	Data   []byte
	Width  int
	Height int
}

// ToRGBA converts any decoded image into tightly packed RGBA8 rows anchored at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// DecodeImage decodes PNG, JPEG, GIF, BMP, TIFF or WebP data into RGBA8 pixels.
func DecodeImage(r io.Reader) (Pixels, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return Pixels{}, fmt.Errorf("decode image: %w", err)
	}
	rgba := ToRGBA(img)
	Logger().Debug("image decoded", "format", format, "width", rgba.Rect.Dx(), "height", rgba.Rect.Dy())
	return Pixels{Data: rgba.Pix, Width: rgba.Rect.Dx(), Height: rgba.Rect.Dy()}, nil
}

func LoadImage(path string) (Pixels, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pixels{}, err
	}
	defer f.Close()
	px, err := DecodeImage(bufio.NewReader(f))
	if err != nil {
		return Pixels{}, fmt.Errorf("%s: %w", path, err)
	}
	return px, nil
}

// Checkerboard generates an opaque two-tone texture with square cells of the given size.
func Checkerboard(width, height, cell int) Pixels {
	if cell <= 0 {
		cell = 1
	}
	data := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := byte(0x30)
			if (x/cell+y/cell)%2 == 0 {
				v = 0xe0
			}
			i := (y*width + x) * 4
			data[i], data[i+1], data[i+2], data[i+3] = v, v, v, 0xff
		}
	}
	return Pixels{Data: data, Width: width, Height: height}
}
