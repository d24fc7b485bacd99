// Package media turns image uploads into stored blobs.
//
// An upload arrives either as raw multipart bytes or as a data URI string
// inside a JSON body. Both become an ImageInput at the transport boundary and
// are decoded by a single dispatch in Decode.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultMimeType is assumed for bare base64 payloads and unknown uploads.
const DefaultMimeType = "image/jpeg"

// defaultExt is used whenever the mime subtype is not a known image format.
const defaultExt = "jpg"

// imageExts maps every accepted image subtype to its stored extension. Other
// image types (svg in particular) are rejected.
var imageExts = map[string]string{
	"jpeg":  "jpg",
	"jpg":   "jpg",
	"pjpeg": "jpg",
	"png":   "png",
	"gif":   "gif",
	"webp":  "webp",
}

// ErrDecode is matched by every DecodeError.
var ErrDecode = errors.New("invalid image data")

// DecodeError reports why an image payload was rejected.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrDecode, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrDecode, e.Reason)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDecode}
	}
	return []error{ErrDecode, e.Err}
}

// ImageInput is RawImage or DataURIImage.
type ImageInput interface {
	imageInput()
}

// RawImage is an uploaded file. MimeType may be empty, in which case it is sniffed.
type RawImage struct {
	Content  []byte
	MimeType string
}

// DataURIImage is a base64 payload with the mime type declared in its header.
// An empty MimeType means the payload had no data URI header.
type DataURIImage struct {
	MimeType string
	Payload  string
}

func (RawImage) imageInput()     {}
func (DataURIImage) imageInput() {}

// ParseDataURI splits "data:<mime>[;param...];base64,<payload>" into its
// parts. A string without the "data:" scheme is taken as a bare base64 payload.
func ParseDataURI(raw string) (DataURIImage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DataURIImage{}, &DecodeError{Reason: "empty image"}
	}
	if !strings.HasPrefix(raw, "data:") {
		return DataURIImage{Payload: raw}, nil
	}

	header, payload, ok := strings.Cut(raw, ",")
	if !ok {
		return DataURIImage{}, &DecodeError{Reason: "data URI has no payload"}
	}
	params := strings.Split(strings.TrimPrefix(header, "data:"), ";")
	if len(params) < 2 || !strings.EqualFold(strings.TrimSpace(params[len(params)-1]), "base64") {
		return DataURIImage{}, &DecodeError{Reason: "data URI must be ;base64 encoded"}
	}
	mime, err := canonicalMime(params[0])
	if err != nil {
		return DataURIImage{}, err
	}
	return DataURIImage{MimeType: mime, Payload: payload}, nil
}

// DecodedImage is a validated payload ready to be stored.
type DecodedImage struct {
	Data     []byte
	MimeType string
	Ext      string
}

// Decode validates an ImageInput and returns its bytes. Base64 is decoded
// strictly: bad padding, stray characters and truncated input are rejected.
func Decode(in ImageInput) (*DecodedImage, error) {
	switch v := in.(type) {
	case RawImage:
		if len(v.Content) == 0 {
			return nil, &DecodeError{Reason: "empty image"}
		}
		declared := strings.ToLower(strings.TrimSpace(v.MimeType))
		if declared == "" || declared == "application/octet-stream" {
			declared = http.DetectContentType(v.Content)
		}
		mime, err := canonicalMime(declared)
		if err != nil {
			return nil, err
		}
		return &DecodedImage{Data: v.Content, MimeType: mime, Ext: ExtFor(mime)}, nil

	case DataURIImage:
		data, err := base64.StdEncoding.Strict().DecodeString(v.Payload)
		if err != nil {
			return nil, &DecodeError{Reason: "malformed base64", Err: err}
		}
		if len(data) == 0 {
			return nil, &DecodeError{Reason: "empty image"}
		}
		declared := v.MimeType
		if declared == "" {
			declared = DefaultMimeType
		}
		mime, err := canonicalMime(declared)
		if err != nil {
			return nil, err
		}
		return &DecodedImage{Data: data, MimeType: mime, Ext: ExtFor(mime)}, nil

	case nil:
		return nil, &DecodeError{Reason: "no image supplied"}

	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unsupported image input %T", in)}
	}
}

// ExtFor derives a file extension from a mime type, falling back to jpg.
func ExtFor(mime string) string {
	if ext, ok := imageExts[subtype(mime)]; ok {
		return ext
	}
	return defaultExt
}

// canonicalMime accepts only the image types in imageExts and returns the
// content type their stored extension is served with.
func canonicalMime(mime string) (string, error) {
	ext, ok := imageExts[subtype(mime)]
	if !ok || !strings.EqualFold(strings.TrimSpace(strings.SplitN(mime, "/", 2)[0]), "image") {
		return "", &DecodeError{Reason: fmt.Sprintf("unsupported mime type %q", mime)}
	}
	if ext == "jpg" {
		return "image/jpeg", nil
	}
	return "image/" + ext, nil
}

func subtype(mime string) string {
	_, sub, ok := strings.Cut(mime, "/")
	if !ok {
		return ""
	}
	sub, _, _ = strings.Cut(sub, ";")
	return strings.ToLower(strings.TrimSpace(sub))
}
