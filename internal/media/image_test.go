package media

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestParseDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(pngHeader)

	in, err := ParseDataURI("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", in.MimeType)
	assert.Equal(t, payload, in.Payload)

	bare, err := ParseDataURI("  " + payload + "\n")
	require.NoError(t, err)
	assert.Empty(t, bare.MimeType)
	assert.Equal(t, payload, bare.Payload)
}

func TestParseDataURIRejectsBadHeaders(t *testing.T) {
	cases := []string{
		"",
		"data:image/png;base64",
		"data:image/png," + "aGVsbG8=",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/svg+xml;base64,PHN2Zy8+",
		"data:image/png;base64;charset=utf-8,aGVsbG8=",
	}
	for _, raw := range cases {
		_, err := ParseDataURI(raw)
		assert.ErrorIs(t, err, ErrDecode, "input %q", raw)
	}
}

func TestParseDataURIWithParameters(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(pngHeader)

	in, err := ParseDataURI("data:image/PNG;name=a.png;BASE64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", in.MimeType)
	assert.Equal(t, payload, in.Payload)
}

func TestDecodeDataURI(t *testing.T) {
	in := DataURIImage{MimeType: "image/png", Payload: base64.StdEncoding.EncodeToString(pngHeader)}

	img, err := Decode(in)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, img.Data)
	assert.Equal(t, "png", img.Ext)

	again, err := Decode(in)
	require.NoError(t, err)
	assert.Equal(t, img, again)
}

func TestDecodeBarePayloadFallsBackToJPEG(t *testing.T) {
	img, err := Decode(DataURIImage{Payload: base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))})
	require.NoError(t, err)
	assert.Equal(t, DefaultMimeType, img.MimeType)
	assert.Equal(t, "jpg", img.Ext)
}

func TestDecodeRejectsMalformedBase64(t *testing.T) {
	good := base64.StdEncoding.EncodeToString([]byte("hello world"))
	cases := map[string]string{
		"truncated":     good[:len(good)-2],
		"bad character": "aGVs*G8=",
		"missing pad":   "aGVsbG8",
		"trailing bits": "aGVsbG9=",
		"empty payload": "",
		"url alphabet":  strings.ReplaceAll(base64.StdEncoding.EncodeToString([]byte{0xfb, 0xff}), "+", "-"),
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(DataURIImage{MimeType: "image/png", Payload: payload})
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestDecodeRawImage(t *testing.T) {
	img, err := Decode(RawImage{Content: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, "png", img.Ext)

	_, err = Decode(RawImage{Content: []byte("plain text"), MimeType: "text/plain"})
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Decode(RawImage{Content: []byte("<svg/>"), MimeType: "image/svg+xml"})
	assert.ErrorIs(t, err, ErrDecode)

	img, err = Decode(RawImage{Content: []byte("jpeg-bytes"), MimeType: "image/jpg"})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MimeType)
	assert.Equal(t, "jpg", img.Ext)

	_, err = Decode(RawImage{})
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Decode(nil)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeRejectsUnlistedImageTypes(t *testing.T) {
	svg := base64.StdEncoding.EncodeToString([]byte("<svg/>"))
	for _, mime := range []string{"image/svg+xml", "image/bmp", "text/html"} {
		_, err := Decode(DataURIImage{MimeType: mime, Payload: svg})
		assert.ErrorIs(t, err, ErrDecode, mime)
	}
}

func TestExtFor(t *testing.T) {
	assert.Equal(t, "png", ExtFor("image/png"))
	assert.Equal(t, "jpg", ExtFor("image/jpeg"))
	assert.Equal(t, "jpg", ExtFor("image/jpg"))
	assert.Equal(t, "webp", ExtFor("IMAGE/WEBP"))
	assert.Equal(t, "jpg", ExtFor("image/svg+xml"))
	assert.Equal(t, "jpg", ExtFor("garbage"))
}

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	local, err := NewLocalStore(root, "/media/")
	require.NoError(t, err)
	store := NewStore(local)
	ctx := context.Background()

	key, err := store.Put(ctx, "recipes/images", RawImage{Content: pngHeader})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "recipes/images/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "/media/"+key, store.URL(key))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, store.Remove(ctx, key))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	// Removing twice is not an error.
	require.NoError(t, store.Remove(ctx, key))
	assert.Equal(t, "", store.URL(""))
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	local, err := NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)
	err = local.Save(context.Background(), "../outside.png", pngHeader, "image/png")
	assert.Error(t, err)
}
