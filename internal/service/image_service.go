package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"path"
	"strings"

	"yatube/internal/config"
	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/storage"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	JPEGQuality   = 82
	WebPQuality   = 70
	MasterMaxSize = 2048
	// MaxSourcePixels bounds width*height of an upload before it is decoded.
	MaxSourcePixels = 40_000_000

	imageKeyPrefix = "posts"

	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgEmptyFile    = "The submitted file is empty."
)

// ImageService validates uploaded post images and writes them to the blob area.
type ImageService struct {
	blobs              *storage.BlobStore
	maxUploadSizeBytes int64
}

type UploadImageInput struct {
	AuthorID uint
	Content  []byte
}

// ProcessedImage is a decoded upload re-encoded as a JPEG master and a WebP
// variant, ready to be stored.
type ProcessedImage struct {
	Key      string
	WebPKey  string
	Width    int
	Height   int
	jpegData []byte
	webpData []byte
}

func NewImageService(blobs *storage.BlobStore, cfg *config.Config) *ImageService {
	maxBytes := cfg.ImageMaxUploadBytes()
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	return &ImageService{blobs: blobs, maxUploadSizeBytes: maxBytes}
}

// Process sniffs and decodes the upload. Rejections are field errors on "image".
func (s *ImageService) Process(ctx context.Context, in UploadImageInput) (*ProcessedImage, error) {
	_, span := observability.StartServiceSpan(ctx, "image.process")
	img, err := s.process(in)
	observability.EndSpan(span, err)
	if err != nil {
		observability.ImagesProcessed.WithLabelValues("rejected").Inc()
		return nil, err
	}
	return img, nil
}

func (s *ImageService) process(in UploadImageInput) (*ProcessedImage, error) {
	if len(in.Content) == 0 {
		return nil, models.NewFieldError("image", msgEmptyFile)
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewFieldError("image", msgInvalidImage)
	}

	if !isAllowedImageMIME(http.DetectContentType(in.Content)) {
		return nil, models.NewFieldError("image", msgInvalidImage)
	}

	// A few hundred bytes of PNG can declare a huge canvas; check the header first.
	header, _, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewFieldError("image", msgInvalidImage)
	}
	if header.Width <= 0 || header.Height <= 0 || int64(header.Width)*int64(header.Height) > MaxSourcePixels {
		return nil, models.NewFieldError("image", msgInvalidImage)
	}

	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewFieldError("image", msgInvalidImage)
	}

	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)
	jpegData, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	webpData, err := encodeWebP(master, WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	hash := buildDeterministicImageHash(in.AuthorID, jpegData)
	b := master.Bounds()
	return &ProcessedImage{
		Key:      path.Join(imageKeyPrefix, hash, "master.jpg"),
		WebPKey:  path.Join(imageKeyPrefix, hash, "master.webp"),
		Width:    b.Dx(),
		Height:   b.Dy(),
		jpegData: jpegData,
		webpData: webpData,
	}, nil
}

// Store writes both encodings. created is false when identical content was
// already stored, in which case the caller must not remove it on rollback.
func (s *ImageService) Store(img *ProcessedImage) (created bool, err error) {
	exists, err := s.blobs.Exists(img.Key)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if exists {
		observability.ImagesProcessed.WithLabelValues("deduplicated").Inc()
		return false, nil
	}

	if err := s.blobs.Save(img.Key, img.jpegData); err != nil {
		return false, models.NewInternalError(err)
	}
	if err := s.blobs.Save(img.WebPKey, img.webpData); err != nil {
		_ = s.blobs.Delete(img.Key)
		return false, models.NewInternalError(err)
	}
	observability.ImagesProcessed.WithLabelValues("stored").Inc()
	return true, nil
}

// Remove deletes both encodings of a stored image.
func (s *ImageService) Remove(img *ProcessedImage) {
	_ = s.blobs.Delete(img.Key)
	_ = s.blobs.Delete(img.WebPKey)
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	switch strings.TrimSpace(mediaType) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func buildDeterministicImageHash(authorID uint, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d:", authorID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
