// Package upload validates product images and turns them into placeholder products.
package upload

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxFileSize is the largest accepted image, in bytes.
const MaxFileSize = 2 * 1024 * 1024

var (
	allowedTypes      = []string{"image/jpeg", "image/jpg", "image/png"}
	allowedExtensions = []string{".jpg", ".jpeg", ".png"}
)

// Messages shown to the user when a file is rejected.
const (
	MessageUnsupportedFormat = "Solo se permiten archivos .JPG o .PNG"
	MessageTooLarge          = "El archivo no puede superar los 2 MB"
)

// Reason identifies which rule rejected a file.
type Reason string

const (
	ReasonType      Reason = "type"
	ReasonExtension Reason = "extension"
	ReasonSize      Reason = "size"
)

// ErrInvalidFile is wrapped by every ValidationError.
var ErrInvalidFile = errors.New("invalid file")

// ValidationError reports the first rule a file failed.
type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidFile
}

// File describes an uploaded file as declared by the client.
type File struct {
	Name string
	Type string
	Size int64
}

// Validate checks the declared type, then the extension, then the size,
// and returns a *ValidationError for the first failure.
func Validate(f File) error {
	if !slices.Contains(allowedTypes, f.Type) {
		return &ValidationError{Reason: ReasonType, Message: MessageUnsupportedFormat}
	}
	if !slices.Contains(allowedExtensions, extension(f.Name)) {
		return &ValidationError{Reason: ReasonExtension, Message: MessageUnsupportedFormat}
	}
	if f.Size > MaxFileSize {
		return &ValidationError{Reason: ReasonSize, Message: MessageTooLarge}
	}
	return nil
}

// FromMultipart describes a multipart file part. When the part declares no
// usable content type, the type is detected from the content.
func FromMultipart(header *multipart.FileHeader, content []byte) File {
	contentType := header.Header.Get("Content-Type")
	if mediaType, _, found := strings.Cut(contentType, ";"); found {
		contentType = mediaType
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(content).String()
	}
	return File{
		Name: header.Filename,
		Type: contentType,
		Size: header.Size,
	}
}

// extension returns the lowercased suffix starting at the last dot, or "" if there is none.
func extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
