package media

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 82

// Limit downscales an encoded image so it fits inside maxW x maxH, keeping
// its aspect ratio. Images already inside the box, and payloads that do not
// decode, are returned unchanged with changed == false.
func Limit(data []byte, maxW, maxH int) (out []byte, contentType string, changed bool, err error) {
	src, format, decErr := image.Decode(bytes.NewReader(data))
	if decErr != nil {
		return data, "", false, nil
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || (w <= maxW && h <= maxH) {
		return data, "", false, nil
	}

	nw, nh := fit(w, h, maxW, maxH)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if format == "png" {
		if err := png.Encode(&buf, dst); err != nil {
			return nil, "", false, err
		}
		return buf.Bytes(), "image/png", true, nil
	}
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", false, err
	}
	return buf.Bytes(), "image/jpeg", true, nil
}

func fit(w, h, maxW, maxH int) (int, int) {
	rw := float64(maxW) / float64(w)
	rh := float64(maxH) / float64(h)
	r := rw
	if rh < r {
		r = rh
	}
	nw := int(float64(w)*r + 0.5)
	nh := int(float64(h)*r + 0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

// LimitFile reads f fully and applies Limit, returning a File backed by the
// result.
func LimitFile(f File, maxW, maxH int) (File, error) {
	rc, err := f.Open()
	if err != nil {
		return File{}, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return File{}, err
	}
	out, ct, changed, err := Limit(data, maxW, maxH)
	if err != nil {
		return File{}, err
	}
	name := f.Filename
	if !changed {
		ct = f.ContentType
	} else if ct == "image/jpeg" && !hasJPEGExt(name) {
		name = strings.TrimSuffix(name, extOf(name)) + ".jpg"
	}
	return BytesFile(name, ct, out), nil
}

func extOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

func hasJPEGExt(name string) bool {
	ext := strings.ToLower(extOf(name))
	return ext == ".jpg" || ext == ".jpeg"
}
