package images

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"project-collab-api/internal/models"

	"golang.org/x/sync/errgroup"
)

// MaxBytes is the per-file size ceiling. Larger files are excluded at
// selection time, before any encoding happens.
const MaxBytes = 2 << 20 // 2MB

// InlineLimit is the threshold under which a payload is inlined as a
// data: URL. Larger files go to the blob store when one is configured.
const InlineLimit = 256 << 10 // 256KB

// Uploader stores a payload externally and returns a URL for it.
type Uploader interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Result is the outcome of processing one comment's attachments.
// Skipped lists the filenames excluded by validation; the caller reports
// them back to the user rather than failing the whole post.
type Result struct {
	Accepted []models.Image
	Skipped  []string
}

// Process validates and encodes a comment's attachments. Validation
// (image/* type, size cap) excludes individual files; encoding failures
// abort the whole operation so a comment never carries a partial image
// set. Files are read and encoded concurrently and joined before return.
// With a nil uploader every accepted file is inlined.
func Process(ctx context.Context, files []*multipart.FileHeader, store Uploader) (Result, error) {
	var res Result

	var valid []*multipart.FileHeader
	for _, fh := range files {
		// a missing declared type is resolved by sniffing during encode
		if fh.Size > MaxBytes || (declaredType(fh) != "" && !isImageType(declaredType(fh))) {
			res.Skipped = append(res.Skipped, fh.Filename)
			continue
		}
		valid = append(valid, fh)
	}
	if len(valid) == 0 {
		return res, nil
	}

	encoded := make([]models.Image, len(valid))
	rejected := make([]bool, len(valid))
	g, gctx := errgroup.WithContext(ctx)
	for i, fh := range valid {
		i, fh := i, fh
		g.Go(func() error {
			img, ok, err := encodeOne(gctx, fh, store)
			if err != nil {
				return err
			}
			if !ok {
				rejected[i] = true
				return nil
			}
			encoded[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{Skipped: res.Skipped}, err
	}

	for i, fh := range valid {
		if rejected[i] {
			res.Skipped = append(res.Skipped, fh.Filename)
			continue
		}
		res.Accepted = append(res.Accepted, encoded[i])
	}
	return res, nil
}

// encodeOne reads and encodes a single attachment. The false return marks
// a payload whose sniffed content type turned out not to be an image; the
// caller reports it as skipped rather than failing the batch.
func encodeOne(ctx context.Context, fh *multipart.FileHeader, store Uploader) (models.Image, bool, error) {
	f, err := fh.Open()
	if err != nil {
		return models.Image{}, false, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.Image{}, false, fmt.Errorf("read %s: %w", fh.Filename, err)
	}

	contentType := declaredType(fh)
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !isImageType(contentType) {
		return models.Image{}, false, nil
	}

	img := models.Image{
		Name: fh.Filename,
		Type: contentType,
		Size: int64(len(data)),
	}

	if store != nil && len(data) > InlineLimit {
		url, err := store.Put(ctx, fh.Filename, contentType, data)
		if err != nil {
			return models.Image{}, false, fmt.Errorf("upload %s: %w", fh.Filename, err)
		}
		img.URL = url
		return img, true, nil
	}

	img.Data = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return img, true, nil
}

func declaredType(fh *multipart.FileHeader) string {
	return fh.Header.Get("Content-Type")
}

func isImageType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}
