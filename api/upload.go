package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rpupo63/builders-showcase-backend/errs"
	"github.com/rpupo63/builders-showcase-backend/models"
	"github.com/rpupo63/builders-showcase-backend/services"
)

// parseForm accepts multipart and urlencoded bodies up to maxBytes.
func parseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	err := r.ParseMultipartForm(maxBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(maxBytes)
		}
		return errs.NewMalformedPayloadError("form", err)
	}
	return nil
}

// imageUpload is a form file that passed the image check and has not been
// stored yet.
type imageUpload struct {
	field       string
	header      *multipart.FileHeader
	contentType string
}

// formImage checks the file in form field without storing it. It returns nil
// when the field is absent.
func formImage(r *http.Request, field string) (*imageUpload, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	header := r.MultipartForm.File[field][0]

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		file, err := header.Open()
		if err != nil {
			return nil, errs.NewMalformedPayloadError(field, err)
		}
		defer file.Close()

		sniff := make([]byte, 512)
		n, _ := io.ReadFull(file, sniff)
		contentType = http.DetectContentType(sniff[:n])
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errs.NewValidationError(field, "File must be an image")
	}

	return &imageUpload{field: field, header: header, contentType: contentType}, nil
}

// store uploads the file under folder and returns the unsaved image record.
func (u *imageUpload) store(ctx context.Context, blobs services.BlobStore, folder, alt string) (*models.Image, error) {
	file, err := u.header.Open()
	if err != nil {
		return nil, errs.NewMalformedPayloadError(u.field, err)
	}
	defer file.Close()

	url, err := blobs.Put(ctx, services.ObjectKey(folder, u.header.Filename), file, u.header.Size, u.contentType)
	if err != nil {
		return nil, errs.NewStorageUploadError(u.field, err)
	}

	image := &models.Image{URL: url}
	if alt != "" {
		image.Alt = &alt
	}
	return image, nil
}
