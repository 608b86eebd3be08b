package filesystem

import (
	"bytes"
	"encoding/binary"
	"io/ioutil"
	"path/filepath"
	"testing"

	"svconn/pack"
)

// writePak builds a minimal valid PACK archive at path containing files,
// matching the exact binary layout pack.go reads back.
func writePak(t *testing.T, path string, files map[string]string) {
	t.Helper()

	type dirEntry struct {
		name   string
		offset int32
		size   int32
	}
	var data bytes.Buffer
	var dir []dirEntry
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	for _, name := range names {
		content := files[name]
		dir = append(dir, dirEntry{name: name, offset: int32(12 + data.Len()), size: int32(len(content))})
		data.WriteString(content)
	}

	var out bytes.Buffer
	hdr := struct {
		ID     [4]byte
		Offset int32
		Size   int32
	}{ID: [4]byte{'P', 'A', 'C', 'K'}, Offset: int32(12 + data.Len()), Size: int32(len(dir) * 64)}
	binary.Write(&out, binary.LittleEndian, &hdr)
	out.Write(data.Bytes())
	for _, d := range dir {
		var nameBuf [56]byte
		copy(nameBuf[:], d.name)
		entry := struct {
			Name   [56]byte
			Offset int32
			Size   int32
		}{Name: nameBuf, Offset: d.offset, Size: d.size}
		binary.Write(&out, binary.LittleEndian, &entry)
	}

	if err := ioutil.WriteFile(path, out.Bytes(), 0644); err != nil {
		t.Fatalf("writing test pak %s: %v", path, err)
	}
}

func TestPackFileSystem(t *testing.T) {
	dir := t.TempDir()
	pakPath := filepath.Join(dir, "pak0.pak")
	writePak(t, pakPath, map[string]string{"doc1.txt": "this is the first doc\r\n"})

	p, err := pack.NewPackReader(pakPath)
	if err != nil {
		t.Fatalf("Could not open pak: %v", err)
	}
	defer p.Close()

	pfs := packFileSystem{p}
	f, err := pfs.Open("doc1.txt")
	if err != nil {
		t.Fatalf("Could not open doc1: %v", err)
	}
	b, err := ioutil.ReadAll(f)
	if err != nil {
		t.Fatalf("Could not read file: %v", err)
	}
	if string(b) != "this is the first doc\r\n" {
		t.Errorf("contents: %v", string(b))
	}
}

// TestFilesystemOrder verifies that a later-numbered pak (bound first via
// BindBefore) shadows the contents of an earlier-numbered one, the load
// order useDir establishes for pak0..pakN.
func TestFilesystemOrder(t *testing.T) {
	dir := t.TempDir()
	writePak(t, filepath.Join(dir, "pak0.pak"), map[string]string{
		"doc1.txt": "this is the first doc\r\n",
	})
	writePak(t, filepath.Join(dir, "pak1.pak"), map[string]string{
		"doc1.txt": "this is the first doc 2. version\r\n",
	})

	UseBaseDir(t.TempDir())
	UseGameDir(dir)

	b, err := ReadFile("doc1.txt")
	if err != nil {
		t.Fatalf("No file doc1: %v", err)
	}
	if string(b) != "this is the first doc 2. version\r\n" {
		t.Errorf("contents: %v", string(b))
	}
}

func TestFilesystemOs(t *testing.T) {
	dir := t.TempDir()
	if err := ioutil.WriteFile(filepath.Join(dir, "doc5.txt"), []byte("good file5\n"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	UseBaseDir(t.TempDir())
	UseGameDir(dir)

	b, err := ReadFile("doc5.txt")
	if err != nil {
		t.Fatalf("No file doc5: %v", err)
	}
	if string(b) != "good file5\n" {
		t.Errorf("contents: %v", b)
	}
}

func TestReferencedPaks(t *testing.T) {
	dir := t.TempDir()
	writePak(t, filepath.Join(dir, "pak0.pak"), map[string]string{
		"doc1.txt": "this is the first doc\r\n",
	})

	UseBaseDir(t.TempDir())
	UseGameDir(dir)

	refs := ReferencedPaks()
	if len(refs) != 1 {
		t.Fatalf("ReferencedPaks() = %v, want 1 entry", refs)
	}
	if refs[0].Name != "pak0.pak" {
		t.Errorf("ReferencedPaks()[0].Name = %v, want pak0.pak", refs[0].Name)
	}

	sums := PureChecksums()
	if len(sums) != 1 || sums[0] != refs[0].Checksum {
		t.Errorf("PureChecksums() = %v, want [%v]", sums, refs[0].Checksum)
	}
}

func TestIsIDPak(t *testing.T) {
	if !IsIDPak("pak0.pak") {
		t.Errorf("IsIDPak(pak0.pak) = false, want true")
	}
	if IsIDPak("custom.pak") {
		t.Errorf("IsIDPak(custom.pak) = true, want false")
	}
}
