// Package testutil provides shared fixtures for tests: an in-memory database,
// model factories and tiny images.
package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/png"
)

// TB is the subset of testing.TB the helpers need.
type TB interface {
	Helper()
	Fatalf(string, ...any)
	Name() string
	Cleanup(func())
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, G: 30, B: 30, A: 255})
	}
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// TinyGIF returns the smallest valid GIF, the same fixture a browser would upload as small.gif.
func TinyGIF(t TB) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 2, 1), []color.Color{color.White, color.Black})
	buf := bytes.NewBuffer(nil)
	if err := gif.Encode(buf, img, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

// OversizedPNG returns a tiny valid 1x1 PNG whose header claims w x h pixels.
func OversizedPNG(t TB, w, h uint32) []byte {
	t.Helper()
	data := TinyPNG(t, 1, 1)
	// signature (8) + IHDR length (4) + "IHDR" (4), then width and height
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}
