// Package storage keeps uploaded files on local disk, served under /uploads.
package storage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kind is the upload folder a file belongs to.
type Kind string

const (
	KindProductImage Kind = "products"
	KindCatalog      Kind = "catalogs"
	KindTeamPhoto    Kind = "team"
	KindGallery      Kind = "gallery"
	KindResume       Kind = "resumes"
	KindMedia        Kind = "media"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
)

var imageExts = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

var allowedExts = map[Kind][]string{
	KindProductImage: imageExts,
	KindTeamPhoto:    imageExts,
	KindGallery:      imageExts,
	KindCatalog:      {".pdf"},
	KindResume:       {".pdf", ".doc", ".docx"},
	KindMedia:        append([]string{".pdf", ".mp4", ".webm"}, imageExts...),
}

// ParseKind maps a client-supplied folder name to a Kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	_, ok := allowedExts[k]
	return k, ok
}

// Local stores files under Root/<kind>/<uuid><ext> and hands out URLs
// under PublicURL (e.g. "http://localhost:8080/uploads").
type Local struct {
	Root      string
	PublicURL string
	MaxBytes  int64
}

func NewLocal(root, baseURL string, maxBytes int64) *Local {
	return &Local{
		Root:      root,
		PublicURL: strings.TrimRight(baseURL, "/") + "/uploads",
		MaxBytes:  maxBytes,
	}
}

// Save validates and writes the uploaded file and returns its public URL.
func (l *Local) Save(fh *multipart.FileHeader, kind Kind) (string, error) {
	// 1. Check the extension and size.
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowed(kind, ext) {
		return "", fmt.Errorf("%w: %q for %s (allowed: %s)", ErrUnsupportedType, fh.Filename, kind, strings.Join(allowedExts[kind], ", "))
	}
	if l.MaxBytes > 0 && fh.Size > l.MaxBytes {
		return "", fmt.Errorf("%w: %q exceeds %d bytes", ErrTooLarge, fh.Filename, l.MaxBytes)
	}

	// 2. Create the kind directory if it doesn't exist.
	dir := filepath.Join(l.Root, string(kind))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	// 3. Generate a safe unique filename (uuid + extension) and copy.
	name := uuid.New().String() + ext
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}

	return l.PublicURL + "/" + path.Join(string(kind), name), nil
}

// Remove deletes a file previously returned by Save. URLs outside the
// upload area are ignored, as are files that are already gone.
func (l *Local) Remove(url string) error {
	rel, ok := strings.CutPrefix(url, l.PublicURL+"/")
	if !ok {
		return nil
	}
	clean := path.Clean("/" + rel)[1:]
	if clean == "" || strings.HasPrefix(clean, "..") {
		return nil
	}
	if err := os.Remove(filepath.Join(l.Root, filepath.FromSlash(clean))); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveAll removes every url, logging failures.
func (l *Local) RemoveAll(urls ...string) {
	for _, u := range urls {
		if err := l.Remove(u); err != nil {
			log.Printf("Failed to remove upload %s: %v", u, err)
		}
	}
}

func allowed(kind Kind, ext string) bool {
	for _, e := range allowedExts[kind] {
		if e == ext {
			return true
		}
	}
	return false
}
