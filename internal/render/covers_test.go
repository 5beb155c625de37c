package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.RGBA{R: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestCoverFetcher_FetchAll(t *testing.T) {
	data := testPNG(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(data)
		case "/missing.png":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.Write([]byte("not an image"))
		}
	}))
	defer server.Close()

	f := NewCoverFetcher(slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))

	covers := f.FetchAll(context.Background(), []string{
		server.URL + "/ok.png",
		server.URL + "/missing.png",
		server.URL + "/garbage",
		"",
	})

	if len(covers) != 4 {
		t.Fatalf("len = %d, want 4", len(covers))
	}
	if covers[0] == nil {
		t.Error("valid PNG should decode")
	} else if covers[0].Bounds().Dx() != 10 {
		t.Errorf("decoded width = %d, want 10", covers[0].Bounds().Dx())
	}
	if covers[1] != nil {
		t.Error("404 should yield nil, not an image")
	}
	if covers[2] != nil {
		t.Error("undecodable body should yield nil")
	}
	if covers[3] != nil {
		t.Error("empty URL should yield nil")
	}
}
