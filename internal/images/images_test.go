package images

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeFile struct {
	name        string
	contentType string
	data        []byte
}

func buildFileHeaders(t *testing.T, files []fakeFile) []*multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(8<<20))
	return req.MultipartForm.File["images"]
}

func TestProcess_InlinesSmallImages(t *testing.T) {
	headers := buildFileHeaders(t, []fakeFile{
		{name: "shot.png", contentType: "image/png", data: []byte("pngdata")},
	})

	res, err := Process(context.Background(), headers, nil)
	require.NoError(t, err)
	require.Empty(t, res.Skipped)
	require.Len(t, res.Accepted, 1)

	img := res.Accepted[0]
	require.Equal(t, "shot.png", img.Name)
	require.Equal(t, "image/png", img.Type)
	require.Equal(t, int64(7), img.Size)
	require.True(t, strings.HasPrefix(img.Data, "data:image/png;base64,"))
	require.Empty(t, img.URL)
}

func TestProcess_SkipsOversizedAndNonImages(t *testing.T) {
	big := make([]byte, MaxBytes+1)
	headers := buildFileHeaders(t, []fakeFile{
		{name: "huge.png", contentType: "image/png", data: big},
		{name: "notes.pdf", contentType: "application/pdf", data: []byte("pdf")},
		{name: "ok.jpg", contentType: "image/jpeg", data: []byte("jpg")},
	})

	res, err := Process(context.Background(), headers, nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"huge.png", "notes.pdf"}, res.Skipped)
	require.Len(t, res.Accepted, 1)
	require.Equal(t, "ok.jpg", res.Accepted[0].Name)
}

func TestProcess_AllFilesInvalid(t *testing.T) {
	headers := buildFileHeaders(t, []fakeFile{
		{name: "notes.txt", contentType: "text/plain", data: []byte("hi")},
	})

	res, err := Process(context.Background(), headers, nil)
	require.NoError(t, err)
	require.Empty(t, res.Accepted)
	require.Equal(t, []string{"notes.txt"}, res.Skipped)
}

func TestProcess_SniffsUndeclaredType(t *testing.T) {
	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 64)...)
	headers := buildFileHeaders(t, []fakeFile{
		{name: "untyped.png", data: png},
	})

	res, err := Process(context.Background(), headers, nil)
	require.NoError(t, err)
	require.Empty(t, res.Skipped)
	require.Len(t, res.Accepted, 1)
	require.Equal(t, "image/png", res.Accepted[0].Type)
}

func TestProcess_SniffRejectsUndeclaredNonImage(t *testing.T) {
	headers := buildFileHeaders(t, []fakeFile{
		{name: "malware.exe", data: []byte("#!/bin/sh\necho pwned")},
		{name: "ok.png", data: append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 16)...)},
	})

	res, err := Process(context.Background(), headers, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"malware.exe"}, res.Skipped)
	require.Len(t, res.Accepted, 1)
	require.Equal(t, "ok.png", res.Accepted[0].Name)
}

type fakeUploader struct {
	puts int
}

func (u *fakeUploader) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	u.puts++
	return "http://blobs/bucket/" + name, nil
}

func TestProcess_LargeImagesGoToBlobStore(t *testing.T) {
	large := make([]byte, InlineLimit+1)
	headers := buildFileHeaders(t, []fakeFile{
		{name: "big.png", contentType: "image/png", data: large},
		{name: "small.png", contentType: "image/png", data: []byte("tiny")},
	})

	up := &fakeUploader{}
	res, err := Process(context.Background(), headers, up)
	require.NoError(t, err)
	require.Len(t, res.Accepted, 2)
	require.Equal(t, 1, up.puts)

	byName := map[string]int{}
	for i, img := range res.Accepted {
		byName[img.Name] = i
	}
	require.Equal(t, "http://blobs/bucket/big.png", res.Accepted[byName["big.png"]].URL)
	require.Empty(t, res.Accepted[byName["big.png"]].Data)
	require.NotEmpty(t, res.Accepted[byName["small.png"]].Data)
}
