package storage

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var ErrInvalidMedia = errors.New("media must be a data URI, base64 content or a stored reference")

// Upload is one incoming media value. Data (raw bytes from a multipart part)
// wins over Value, which may be a data URI, raw base64 or an existing
// storage reference.
type Upload struct {
	Value string
	Data  []byte
	MIME  string
}

// Empty reports whether the upload carries nothing to persist.
func (u Upload) Empty() bool {
	return len(u.Data) == 0 && strings.TrimSpace(u.Value) == ""
}

// UnmarshalJSON takes a JSON string as the upload value. Other JSON kinds
// fail with a *json.UnmarshalTypeError, which the decoder tags with the
// field name.
func (u *Upload) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &json.UnmarshalTypeError{Value: jsonKind(b), Type: reflect.TypeOf(s)}
	}
	u.Value = s
	return nil
}

func jsonKind(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return "value"
	}
	switch b[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "bool"
	}
	return "number"
}

// UnmarshalParam lets gin bind a form field straight into an Upload.
func (u *Upload) UnmarshalParam(param string) error {
	u.Value = param
	return nil
}

// Decoded content of an upload, ready to be written.
type Decoded struct {
	Data []byte
	MIME string
}

var knownExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// Decode turns a data URI or raw base64 string into bytes. The MIME type
// comes from the data URI prefix, then the hint, then content sniffing.
func Decode(value, mimeHint string) (Decoded, error) {
	value = strings.TrimSpace(value)
	mime := ""

	if strings.HasPrefix(value, "data:") {
		meta, raw, ok := strings.Cut(value, ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return Decoded{}, ErrInvalidMedia
		}
		mime = strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
		value = raw
	}

	data, err := decodeBase64(value)
	if err != nil || len(data) == 0 {
		return Decoded{}, ErrInvalidMedia
	}

	if mime == "" {
		mime = strings.TrimSpace(mimeHint)
	}
	if mime == "" {
		mime = Sniff(data)
	}
	return Decoded{Data: data, MIME: mime}, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, ErrInvalidMedia
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// Sniff detects the MIME type of content, without parameters.
func Sniff(data []byte) string {
	mime, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return mime
}

// ExtensionFor picks a file extension, dot included, for a MIME type.
func ExtensionFor(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if ext, ok := knownExtensions[mime]; ok {
		return ext
	}
	if m := mimetype.Lookup(mime); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".bin"
}
