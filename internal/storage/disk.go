package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrOutsideRoot      = errors.New("reference resolves outside the media root")
	ErrForeignReference = errors.New("media reference belongs to another record")
)

// Disk stores media files under Root and hands out references of the form
// URLPrefix + "/" + relative path.
type Disk struct {
	Root      string
	URLPrefix string
}

func NewDisk(root, urlPrefix string) *Disk {
	return &Disk{Root: root, URLPrefix: "/" + strings.Trim(urlPrefix, "/")}
}

// IsReference reports whether v already names a stored file.
func (d *Disk) IsReference(v string) bool {
	return strings.HasPrefix(strings.TrimSpace(v), d.URLPrefix+"/")
}

// Write stores data at rel, replacing any previous file, and returns its reference.
func (d *Disk) Write(rel string, data []byte) (string, error) {
	full, err := d.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating media dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("writing media file: %w", err)
	}
	return d.URLPrefix + "/" + path.Clean(rel), nil
}

// Persist stores an upload as dir/base plus an extension derived from its
// MIME type. References to files under dir pass through untouched; any other
// reference fails with ErrForeignReference. It returns the value to keep in
// the column and the MIME sidecar (empty for pass-through).
func (d *Disk) Persist(dir, base string, up Upload) (ref, mime string, err error) {
	if len(up.Data) == 0 && d.IsReference(up.Value) {
		ref = strings.TrimSpace(up.Value)
		if !d.within(dir, ref) {
			return "", "", ErrForeignReference
		}
		return ref, "", nil
	}

	var dec Decoded
	if len(up.Data) > 0 {
		dec = Decoded{Data: up.Data, MIME: strings.TrimSpace(up.MIME)}
		if dec.MIME == "" || dec.MIME == "application/octet-stream" {
			dec.MIME = Sniff(up.Data)
		}
	} else {
		dec, err = Decode(up.Value, up.MIME)
		if err != nil {
			return "", "", err
		}
	}

	ref, err = d.Write(path.Join(dir, base+ExtensionFor(dec.MIME)), dec.Data)
	if err != nil {
		return "", "", err
	}
	return ref, dec.MIME, nil
}

// Read loads the bytes behind a reference.
func (d *Disk) Read(ref string) ([]byte, error) {
	if !d.IsReference(ref) {
		return nil, ErrOutsideRoot
	}
	full, err := d.resolve(strings.TrimPrefix(strings.TrimSpace(ref), d.URLPrefix+"/"))
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// Encode renders a stored column value for clients: local references are
// read back and base64-encoded (nil when the file is gone); any other
// non-empty value is returned as stored.
func (d *Disk) Encode(stored *string) *string {
	if stored == nil || *stored == "" {
		return nil
	}
	if !d.IsReference(*stored) {
		return stored
	}
	data, err := d.Read(*stored)
	if err != nil {
		return nil
	}
	enc := base64.StdEncoding.EncodeToString(data)
	return &enc
}

// within reports whether ref names a file below dir.
func (d *Disk) within(dir, ref string) bool {
	rel := path.Clean("/" + strings.TrimPrefix(ref, d.URLPrefix+"/"))
	return strings.HasPrefix(rel, path.Clean("/"+dir)+"/")
}

func (d *Disk) resolve(rel string) (string, error) {
	root, err := filepath.Abs(d.Root)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, filepath.FromSlash(path.Clean("/"+rel)))
	back, err := filepath.Rel(root, full)
	if err != nil || back == "." || strings.HasPrefix(back, "..") {
		return "", ErrOutsideRoot
	}
	return full, nil
}

// Segment sanitizes an identifier, such as a CPF, for use as one path element.
func Segment(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
