package backup

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/aionbd/aionbd-state/internal/logging"
)

// member is one entry written by writeTestArchive.
type member struct {
	name     string
	body     []byte
	typeflag byte
	linkname string
}

func writeTestArchive(t *testing.T, path string, members []member) {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, m := range members {
		typeflag := m.typeflag
		if typeflag == 0 {
			typeflag = tar.TypeReg
		}
		hdr := &tar.Header{
			Name:     m.name,
			Typeflag: typeflag,
			Linkname: m.linkname,
			Mode:     0o644,
			ModTime:  time.Unix(1700000000, 0),
		}
		if typeflag == tar.TypeReg {
			hdr.Size = int64(len(m.body))
		}
		if typeflag == tar.TypeDir {
			hdr.Mode = 0o755
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing header %s: %v", m.name, err)
		}
		if typeflag == tar.TypeReg {
			if _, err := tw.Write(m.body); err != nil {
				t.Fatalf("writing body %s: %v", m.name, err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("closing gzip: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating archive dir: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("writing archive: %v", err)
	}
}

// readTestArchive returns the regular file members of a gzip tar in order.
func readTestArchive(t *testing.T, path string) []member {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("opening gzip: %v", err)
	}
	defer gz.Close()

	var members []member
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return members
		}
		if err != nil {
			t.Fatalf("reading archive: %v", err)
		}
		body, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("reading member %s: %v", hdr.Name, err)
		}
		members = append(members, member{name: hdr.Name, body: body, typeflag: hdr.Typeflag})
	}
}

// rewriteTestArchive rewrites path, passing every member through edit.
func rewriteTestArchive(t *testing.T, path string, edit func(m member) member) {
	t.Helper()

	members := readTestArchive(t, path)
	for i := range members {
		members[i] = edit(members[i])
	}
	writeTestArchive(t, path, members)
}

func entryFor(name string, body []byte) Entry {
	sum := sha256.Sum256(body)
	return Entry{Path: name, SizeBytes: int64(len(body)), SHA256: hex.EncodeToString(sum[:])}
}

func manifestJSON(t *testing.T, entries ...Entry) []byte {
	t.Helper()

	m := Manifest{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Date(2026, 1, 23, 10, 7, 12, 0, time.UTC),
		Source: Source{
			SnapshotPath:    "/data/aionbd_snapshot.json",
			WALPath:         "/data/aionbd_wal.jsonl",
			IncrementalPath: "/data/aionbd_snapshot.incrementals",
		},
		Entries: entries,
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshaling manifest: %v", err)
	}
	return data
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// liveState lays out a snapshot, WAL and one incremental segment under dir.
func liveState(t *testing.T, dir string) ArtifactSet {
	t.Helper()
	set := NewArtifactSet(filepath.Join(dir, "snapshot.json"), filepath.Join(dir, "wal.jsonl"))
	writeFile(t, set.SnapshotPath, "{\"collections\":1}\n")
	writeFile(t, set.WALPath, "{\"type\":\"upsert\"}\n")
	writeFile(t, filepath.Join(set.IncrementalPath, "000001.jsonl"), "{\"segment\":1}\n")
	return set
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(
		WithTempDir(t.TempDir()),
		WithBackupDir(t.TempDir()),
		WithClock(func() time.Time { return time.Date(2026, 1, 23, 10, 7, 12, 0, time.UTC) }),
		WithLogger(logging.ForTest(t)),
	)
}

// assertEmptyDir fails if dir has any entries.
func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	if len(entries) != 0 {
		t.Errorf("expected %s to be empty, found %d entries", dir, len(entries))
	}
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
