// Package storage keeps ticket attachments on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

var (
	// ErrExtensionNotAllowed is returned for files outside the allow-list.
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	// ErrFileTooLarge is returned for files over the size cap.
	ErrFileTooLarge = errors.New("file exceeds size limit")
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
	nameStamp = "20060102_150405"
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".txt":  {},
}

// Disk writes attachments into a single directory served under URLPrefix.
type Disk struct {
	dir       string
	urlPrefix string
	maxSize   int64
	now       func() time.Time
}

// NewDisk creates the upload directory if needed.
func NewDisk(dir, urlPrefix string, maxSize int64) (*Disk, error) {
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		maxSize:   maxSize,
		now:       time.Now,
	}, nil
}

// Dir returns the upload directory.
func (d *Disk) Dir() string { return d.dir }

// URLPrefix returns the public path files are served under.
func (d *Disk) URLPrefix() string { return d.urlPrefix }

// MaxSize returns the per-file cap in bytes.
func (d *Disk) MaxSize() int64 { return d.maxSize }

// Validate checks the original file name and declared size.
func (d *Disk) Validate(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return fmt.Errorf("%w: %q", ErrExtensionNotAllowed, ext)
	}
	if d.maxSize > 0 && size > d.maxSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}
	return nil
}

// Save writes r under a generated name and returns its public URL. The file
// appears in the directory only once fully written.
func (d *Disk) Save(filename string, r io.Reader) (string, error) {
	name := GenerateName(d.now(), filepath.Ext(filename))
	target := filepath.Join(d.dir, name)

	var capped *cappedReader
	if d.maxSize > 0 {
		capped = &cappedReader{r: io.LimitReader(r, d.maxSize+1), remaining: d.maxSize}
		r = capped
	}
	if err := atomic.WriteFile(target, r); err != nil {
		if capped != nil && capped.remaining < 0 {
			return "", fmt.Errorf("%w: %s", ErrFileTooLarge, filename)
		}
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Chmod(target, filePerms); err != nil {
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	return path.Join(d.urlPrefix, name), nil
}

// GenerateName returns "YYYYMMDD_HHMMSS_<32 hex chars><ext>" with ext lower-cased.
func GenerateName(now time.Time, ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return now.Format(nameStamp) + "_" + id + strings.ToLower(ext)
}

// cappedReader fails once more than remaining bytes have been read, which
// aborts the atomic write before the file is renamed into place.
type cappedReader struct {
	r         io.Reader
	remaining int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		return n, ErrFileTooLarge
	}
	return n, err
}
