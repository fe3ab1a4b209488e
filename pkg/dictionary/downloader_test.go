package dictionary

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureJMdict_LocalCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jmdict.json")
	if err := os.WriteFile(path, []byte(`{"words":[]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// No server: any download attempt would fail.
	d := &Downloader{APIBase: "http://127.0.0.1:0"}
	if err := d.EnsureJMdict(context.Background(), path); err != nil {
		t.Fatalf("EnsureJMdict failed with local file: %v", err)
	}
}

func TestEnsureJMdict_Downloads(t *testing.T) {
	payload := []byte(`{"words":[{"id":"1","kanji":[{"text":"犬"}],"kana":[{"text":"いぬ"}],"sense":[{"gloss":[{"text":"dog"}],"partOfSpeech":["n"]}]}]}`)
	archive := makeTGZ(t, "jmdict-eng-common-3.6.1.json", payload)

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/scriptin/jmdict-simplified/releases/latest":
			if r.Header.Get("User-Agent") == "" {
				t.Errorf("missing User-Agent header")
			}
			fmt.Fprintf(w, `{"assets":[{"name":"kanjidic2-en.json.tgz","browser_download_url":"%[1]s/wrong"},{"name":"jmdict-eng-common-3.6.1.json.tgz","browser_download_url":"%[1]s/dl"}]}`, srv.URL)
		case "/dl":
			w.Write(archive)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "dict", "jmdict.json")
	d := &Downloader{Client: srv.Client(), APIBase: srv.URL}
	if err := d.EnsureJMdict(context.Background(), path); err != nil {
		t.Fatalf("EnsureJMdict: %v", err)
	}

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load downloaded dictionary: %v", err)
	}
	def, err := f.LookupDefinition(context.Background(), "犬", "")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if def.Definition != "dog" {
		t.Errorf("definition = %q; want dog", def.Definition)
	}
}

func TestEnsureJMdict_NoAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"assets":[]}`)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "jmdict.json")
	d := &Downloader{Client: srv.Client(), APIBase: srv.URL}
	if err := d.EnsureJMdict(context.Background(), path); err == nil {
		t.Fatal("expected error when release has no dictionary asset")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no file at %s, stat err = %v", path, err)
	}
}

func makeTGZ(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatalf("tar header: %v", err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatalf("tar write: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}
