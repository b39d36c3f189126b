package picture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/nao1215/iloveck101/internal/httpclient"
	"github.com/nao1215/iloveck101/internal/model"
)

// encodePNG returns a w x h PNG.
func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// imageServer serves images by request path and counts requests.
func imageServer(t *testing.T, images map[string][]byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		data, ok := images[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func newFetcher(t *testing.T, opts ...Option) *Fetcher {
	t.Helper()

	client, err := httpclient.New()
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return NewFetcher(client, opts...)
}

// TestInspect tests header decoding.
func TestInspect(t *testing.T) {
	t.Parallel()

	t.Run("png dimensions", func(t *testing.T) {
		t.Parallel()

		info, err := Inspect(encodePNG(t, 640, 480))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Format != "png" || info.Width != 640 || info.Height != 480 {
			t.Errorf("unexpected info %+v", info)
		}
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := Inspect([]byte("not an image")); !errors.Is(err, ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
	})
}

// TestInfoLargeEnough tests the size threshold boundaries.
func TestInfoLargeEnough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		w, h int
		want bool
	}{
		{400, 400, true},
		{399, 500, false},
		{500, 399, false},
		{1024, 768, true},
	}

	for _, tt := range tests {
		info := Info{Width: tt.w, Height: tt.h}
		if got := info.LargeEnough(400, 400); got != tt.want {
			t.Errorf("LargeEnough(%dx%d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

// TestFileName tests image file name extraction.
func TestFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{"http://img.ck101.com/a/b/photo.jpg", "photo.jpg", true},
		{"https://img.ck101.com/photo.png?w=1#x", "photo.png", true},
		{"HTTP://img.ck101.com/photo.gif", "photo.gif", true},
		{"static/image/common/none.gif", "", false},
		{"/data/attachment/photo.jpg", "", false},
		{"ftp://img.ck101.com/photo.jpg", "", false},
		{"http://img.ck101.com/", "", false},
		{"http://img.ck101.com/a%5C..%5Cphoto.jpg", "", false},
		{`http://img.ck101.com/a\photo.jpg`, "", false},
		{"http://img.ck101.com", "", false},
		{"http:///photo.jpg", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()

			got, ok := FileName(tt.url)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("FileName(%q) = (%q, %v), want (%q, %v)", tt.url, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// TestFetchAndMaybeSave tests the keep or drop decision.
func TestFetchAndMaybeSave(t *testing.T) {
	t.Parallel()

	t.Run("large image is saved", func(t *testing.T) {
		t.Parallel()

		data := encodePNG(t, 400, 400)
		server, _ := imageServer(t, map[string][]byte{"/img/big.png": data})
		dir := t.TempDir()

		outcome, err := newFetcher(t).FetchAndMaybeSave(context.Background(), server.URL+"/img/big.png", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !outcome.Kept || outcome.Reason != model.ReasonSaved {
			t.Fatalf("expected saved, got %+v", outcome)
		}
		if outcome.Path != filepath.Join(dir, "big.png") {
			t.Errorf("unexpected path %q", outcome.Path)
		}
		if len(outcome.Digest) != 64 {
			t.Errorf("expected hex sha3-256 digest, got %q", outcome.Digest)
		}

		written, err := os.ReadFile(outcome.Path)
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}
		if !bytes.Equal(written, data) {
			t.Error("saved file differs from downloaded bytes")
		}
	})

	t.Run("narrow or short images are dropped", func(t *testing.T) {
		t.Parallel()

		server, _ := imageServer(t, map[string][]byte{
			"/narrow.png": encodePNG(t, 399, 500),
			"/short.png":  encodePNG(t, 500, 399),
		})
		dir := t.TempDir()
		fetcher := newFetcher(t)

		for _, name := range []string{"narrow.png", "short.png"} {
			outcome, err := fetcher.FetchAndMaybeSave(context.Background(), server.URL+"/"+name, dir)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", name, err)
			}
			if outcome.Kept || outcome.Reason != model.ReasonTooSmall {
				t.Errorf("%s: expected too small, got %+v", name, outcome)
			}
			if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
				t.Errorf("%s: expected no file, got %v", name, err)
			}
		}
	})

	t.Run("custom minimum size", func(t *testing.T) {
		t.Parallel()

		server, _ := imageServer(t, map[string][]byte{"/small.png": encodePNG(t, 100, 100)})

		outcome, err := newFetcher(t, WithMinSize(50, 50)).FetchAndMaybeSave(context.Background(), server.URL+"/small.png", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !outcome.Kept {
			t.Errorf("expected image to be kept, got %+v", outcome)
		}
	})

	t.Run("invalid url makes no request", func(t *testing.T) {
		t.Parallel()

		_, hits := imageServer(t, nil)

		outcome, err := newFetcher(t).FetchAndMaybeSave(context.Background(), "static/image/none.gif", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.Reason != model.ReasonInvalidURL {
			t.Errorf("expected invalid url, got %+v", outcome)
		}
		if hits.Load() != 0 {
			t.Errorf("expected no request, got %d", hits.Load())
		}
	})

	t.Run("non-success status is a fetch failure", func(t *testing.T) {
		t.Parallel()

		server, _ := imageServer(t, nil)

		outcome, err := newFetcher(t).FetchAndMaybeSave(context.Background(), server.URL+"/missing.png", t.TempDir())
		if !errors.Is(err, ErrFetchFailure) {
			t.Fatalf("expected ErrFetchFailure, got %v", err)
		}
		if outcome.Reason != model.ReasonFailed || outcome.Error == "" {
			t.Errorf("expected failed outcome with message, got %+v", outcome)
		}
	})

	t.Run("undecodable body is a fetch failure", func(t *testing.T) {
		t.Parallel()

		server, _ := imageServer(t, map[string][]byte{"/fake.jpg": []byte("<html>blocked</html>")})
		dir := t.TempDir()

		_, err := newFetcher(t).FetchAndMaybeSave(context.Background(), server.URL+"/fake.jpg", dir)
		if !errors.Is(err, ErrFetchFailure) || !errors.Is(err, ErrDecode) {
			t.Fatalf("expected ErrFetchFailure wrapping ErrDecode, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "fake.jpg")); !os.IsNotExist(err) {
			t.Errorf("expected no file, got %v", err)
		}
	})
}

// TestReadExif tests that images without EXIF yield no tags.
func TestReadExif(t *testing.T) {
	t.Parallel()

	tags, err := ReadExif(encodePNG(t, 10, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("expected no tags, got %v", tags)
	}
}
