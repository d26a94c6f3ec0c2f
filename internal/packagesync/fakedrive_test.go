package packagesync

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"
)

var (
	qName    = regexp.MustCompile(`name = '((?:[^'\\]|\\.)*)'`)
	qParent  = regexp.MustCompile(`'([^']*)' in parents`)
	qMime    = regexp.MustCompile(`mimeType = '([^']*)'`)
	qUnquote = strings.NewReplacer(`\'`, `'`, `\\`, `\`)
)

type fakeFile struct {
	ID       string
	Name     string
	Parent   string
	MimeType string
	Data     []byte
	Modified time.Time
}

func (f *fakeFile) resource() map[string]any {
	sum := md5.Sum(f.Data)
	return map[string]any{
		"id":           f.ID,
		"name":         f.Name,
		"mimeType":     f.MimeType,
		"modifiedTime": f.Modified.UTC().Format(time.RFC3339),
		"md5Checksum":  hex.EncodeToString(sum[:]),
		"size":         fmt.Sprint(len(f.Data)),
	}
}

// fakeDrive serves the subset of the Drive v3 files API the syncer uses.
type fakeDrive struct {
	mu        sync.Mutex
	files     map[string]*fakeFile
	next      int
	downloads int
	now       func() time.Time
}

func newFakeDrive(t *testing.T) (*fakeDrive, *httptest.Server) {
	t.Helper()
	fd := &fakeDrive{files: map[string]*fakeFile{}, now: time.Now}
	srv := httptest.NewServer(fd)
	t.Cleanup(srv.Close)
	return fd, srv
}

func (fd *fakeDrive) add(f fakeFile) *fakeFile {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	fd.next++
	f.ID = fmt.Sprintf("id-%d", fd.next)
	if f.Modified.IsZero() {
		f.Modified = fd.now()
	}
	fd.files[f.ID] = &f
	return &f
}

func (fd *fakeDrive) byName(name string) []*fakeFile {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	var out []*fakeFile
	for _, f := range fd.files {
		if f.Name == name {
			out = append(out, f)
		}
	}
	return out
}

func (fd *fakeDrive) downloadCount() int {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	return fd.downloads
}

func (fd *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	idx := strings.Index(r.URL.Path, "/files")
	if idx < 0 {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path[idx:], "/files"), "/")
	upload := strings.HasPrefix(r.URL.Path, "/upload/")

	switch {
	case r.Method == http.MethodGet && id == "":
		fd.list(w, r.URL.Query().Get("q"))
	case r.Method == http.MethodGet:
		fd.download(w, id)
	case r.Method == http.MethodPost && !upload:
		var meta fakeFile
		var body struct {
			Name     string   `json:"name"`
			MimeType string   `json:"mimeType"`
			Parents  []string `json:"parents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		meta.Name, meta.MimeType = body.Name, body.MimeType
		if len(body.Parents) > 0 {
			meta.Parent = body.Parents[0]
		}
		writeJSON(w, fd.add(meta).resource())
	case upload && (r.Method == http.MethodPost || r.Method == http.MethodPatch):
		fd.upload(w, r, id)
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

func (fd *fakeDrive) list(w http.ResponseWriter, q string) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	var name, parent, mimeType string
	if m := qName.FindStringSubmatch(q); m != nil {
		name = qUnquote.Replace(m[1])
	}
	if m := qParent.FindStringSubmatch(q); m != nil {
		parent = m[1]
	}
	if m := qMime.FindStringSubmatch(q); m != nil {
		mimeType = m[1]
	}
	files := []map[string]any{}
	for _, f := range fd.files {
		if f.Name != name || (parent != "" && f.Parent != parent) || (mimeType != "" && f.MimeType != mimeType) {
			continue
		}
		files = append(files, f.resource())
	}
	writeJSON(w, map[string]any{"files": files})
}

func (fd *fakeDrive) download(w http.ResponseWriter, id string) {
	fd.mu.Lock()
	f, ok := fd.files[id]
	fd.downloads++
	fd.mu.Unlock()
	if !ok {
		http.NotFound(w, nil)
		return
	}
	_, _ = w.Write(f.Data)
}

func (fd *fakeDrive) upload(w http.ResponseWriter, r *http.Request, id string) {
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reader := multipart.NewReader(r.Body, params["boundary"])
	metaPart, err := reader.NextPart()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var meta struct {
		Name    string   `json:"name"`
		Parents []string `json:"parents"`
	}
	if err := json.NewDecoder(metaPart).Decode(&meta); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mediaPart, err := reader.NextPart()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := io.ReadAll(mediaPart)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if id == "" {
		f := fakeFile{Name: meta.Name, Data: data}
		if len(meta.Parents) > 0 {
			f.Parent = meta.Parents[0]
		}
		writeJSON(w, fd.add(f).resource())
		return
	}
	fd.mu.Lock()
	f, ok := fd.files[id]
	if ok {
		f.Data = data
		f.Modified = fd.now()
	}
	fd.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, f.resource())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
