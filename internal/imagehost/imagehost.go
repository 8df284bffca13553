// Package imagehost uploads event images to a remote asset host.
package imagehost

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyImage is returned when an upload is attempted with no bytes.
var ErrEmptyImage = errors.New("image is empty")

// Result describes a stored image.
type Result struct {
	SecureURL string
	PublicID  string
}

// Uploader stores one image under folder and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, folder string) (*Result, error)
}

// New builds the uploader named by kind ("cloudinary" or "memory").
func New(kind, cloudinaryURL string) (Uploader, error) {
	switch kind {
	case "", "cloudinary":
		c, err := NewCloudinary(cloudinaryURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "memory":
		return Memory{}, nil
	}
	return nil, fmt.Errorf("unknown IMAGE_HOST %q", kind)
}

// Memory inlines the image as a data URL. Intended for local development
// without hosting credentials.
type Memory struct{}

func (Memory) Upload(ctx context.Context, data []byte, folder string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	mime := http.DetectContentType(data)
	return &Result{
		SecureURL: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
		PublicID:  folder + "/inline",
	}, nil
}
