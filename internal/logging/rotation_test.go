package logging

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewRotatingWriter_AppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte("existing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rw, err := NewRotatingWriter(path, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}
	defer func() { _ = rw.Close() }()

	if rw.Size() != int64(len("existing\n")) {
		t.Errorf("Size() = %d, want %d", rw.Size(), len("existing\n"))
	}
	if rw.Path() != path {
		t.Errorf("Path() = %q, want %q", rw.Path(), path)
	}
}

func TestRotatingWriter_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = rw.Close() }()

	chunk := []byte(strings.Repeat("a", 600*1024))
	for i := 0; i < 4; i++ {
		if _, err := rw.Write(chunk); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}

	for _, p := range []string{path, path + ".1", path + ".2"} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Errorf("expected only 2 backups, found %s.3", path)
	}
	if rw.Size() != int64(len(chunk)) {
		t.Errorf("active file size = %d, want %d", rw.Size(), len(chunk))
	}
}

func TestRotatingWriter_NoBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = rw.Close() }()

	chunk := []byte(strings.Repeat("b", 700*1024))
	_, _ = rw.Write(chunk)
	_, _ = rw.Write(chunk)

	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("no backup should be kept when MaxBackups is 0")
	}
	if rw.Size() != int64(len(chunk)) {
		t.Errorf("Size() = %d, want %d", rw.Size(), len(chunk))
	}
}

func TestRotatingWriter_DisabledRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	rw, err := NewRotatingWriter(path, RotationConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = rw.Close() }()

	chunk := []byte(strings.Repeat("c", 512*1024))
	for i := 0; i < 3; i++ {
		_, _ = rw.Write(chunk)
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("rotation should be disabled when MaxSizeMB is 0")
	}
}

func TestRotatingWriter_Compression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 1, Compress: true})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = rw.Close() }()

	chunk := []byte(strings.Repeat("z", 700*1024))
	_, _ = rw.Write(chunk)
	_, _ = rw.Write(chunk)

	gz := path + ".1.gz"
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(path + ".1"); os.IsNotExist(err) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("compressed backup was not produced in time")
		}
		time.Sleep(20 * time.Millisecond)
	}

	f, err := os.Open(gz)
	if err != nil {
		t.Fatalf("open %s: %v", gz, err)
	}
	defer func() { _ = f.Close() }()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != len(chunk) {
		t.Errorf("decompressed %d bytes, want %d", len(data), len(chunk))
	}
}

func TestRotatingWriter_Concurrency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 5})
	if err != nil {
		t.Fatal(err)
	}

	line := []byte(strings.Repeat("x", 1023) + "\n")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if _, err := rw.Write(line); err != nil {
					t.Errorf("Write: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	if err := rw.Close(); err != nil {
		t.Fatal(err)
	}

	var total int64
	for _, p := range []string{path, path + ".1", path + ".2"} {
		if info, err := os.Stat(p); err == nil {
			total += info.Size()
		}
	}
	if want := int64(8 * 200 * len(line)); total != want {
		t.Errorf("total bytes across files = %d, want %d", total, want)
	}
}

func TestRotatingWriter_WriteAfterClose(t *testing.T) {
	rw, err := NewRotatingWriter(filepath.Join(t.TempDir(), "app.log"), DefaultRotationConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := rw.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := rw.Write([]byte("late")); err == nil {
		t.Error("expected error writing to a closed writer")
	}
	if err := rw.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestNewLogger_RotatesThroughLogger(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, LevelInfo, RotationConfig{MaxSizeMB: 1, MaxBackups: 1})
	if err != nil {
		t.Fatal(err)
	}
	big := strings.Repeat("m", 4096)
	for i := 0; i < 400; i++ {
		logger.Info("bulk", "payload", big)
	}
	_ = logger.Close()

	if _, err := os.Stat(filepath.Join(dir, FileName+".1")); err != nil {
		t.Errorf("expected a rotated backup: %v", err)
	}
}
