package assets

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed *.riv
var embeddedFS embed.FS

// Embedded returns the files bundled with the package.
func Embedded() fs.FS { return embeddedFS }

// RiveLoader loads .riv references from HTTP, FS or disk.
type RiveLoader struct {
	// FS is searched before the disk for relative references, and after
	// it for absolute paths under an assets directory. Nil skips it.
	FS fs.FS
	// Client is used for http and https references. Nil uses
	// http.DefaultClient.
	Client *http.Client
}

func (l *RiveLoader) Test(ref string) bool {
	return strings.EqualFold(path.Ext(stripQuery(ref)), ".riv")
}

func (l *RiveLoader) Load(ctx context.Context, ref string) ([]byte, error) {
	return fetch(ctx, l.Client, l.FS, ref)
}

// Fetch reads ref as raw bytes regardless of its extension, trying HTTP,
// the embedded files and the disk.
func Fetch(ctx context.Context, ref string) ([]byte, error) {
	return fetch(ctx, nil, Embedded(), ref)
}

func fetch(ctx context.Context, client *http.Client, fsys fs.FS, ref string) ([]byte, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty reference")
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return fetchHTTP(ctx, client, ref)
	}
	if p, ok := strings.CutPrefix(ref, "file://"); ok {
		return os.ReadFile(filepath.FromSlash(p))
	}
	if filepath.IsAbs(ref) {
		// Absolute paths name a file on disk. The bundled copy only stands
		// in for paths under an assets directory that is missing on disk.
		b, err := os.ReadFile(ref)
		if err == nil {
			return b, nil
		}
		if eb, ok := readEmbedded(fsys, ref); ok {
			return eb, nil
		}
		return nil, err
	}
	if b, ok := readEmbedded(fsys, ref); ok {
		return b, nil
	}
	return os.ReadFile(ref)
}

func readEmbedded(fsys fs.FS, ref string) ([]byte, bool) {
	if fsys == nil {
		return nil, false
	}
	clean := cleanAssetPath(ref)
	if clean == "" || !fs.ValidPath(clean) {
		return nil, false
	}
	b, err := fs.ReadFile(fsys, clean)
	if err != nil {
		return nil, false
	}
	return b, true
}

func fetchHTTP(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func stripQuery(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i]
	}
	return ref
}

// cleanAssetPath maps a reference onto the embedded file tree. Absolute
// paths outside an assets directory map to "".
func cleanAssetPath(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(stripQuery(p))
	if filepath.IsAbs(p) {
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return ""
	}
	s = strings.TrimPrefix(s, "./")
	return strings.TrimPrefix(s, "assets/")
}
