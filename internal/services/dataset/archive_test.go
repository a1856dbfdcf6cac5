package dataset

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("Failed to open zip %s: %v", path, err)
	}
	defer r.Close()

	contents := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Failed to open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("Failed to read entry %s: %v", f.Name, err)
		}
		if _, dup := contents[f.Name]; dup {
			t.Errorf("Duplicate entry %s", f.Name)
		}
		contents[f.Name] = string(data)
	}
	return contents
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestPackage_Completeness(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	if err := layout.Prepare(); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	writeFile(t, layout.AnnotationsPath(), `{"annotations": []}`)
	writeFile(t, layout.ImagePath("a.jpg"), "image-a")
	writeFile(t, layout.ImagePath("b.png"), "image-b")
	if err := os.Mkdir(filepath.Join(layout.ImagesPath(), "nested"), 0755); err != nil {
		t.Fatalf("Failed to create nested dir: %v", err)
	}

	if err := Package(layout); err != nil {
		t.Fatalf("Package failed: %v", err)
	}

	contents := readZip(t, layout.ArchivePath())
	var names []string
	for name := range contents {
		names = append(names, name)
	}
	sort.Strings(names)

	expected := []string{"annotations/instances_default.json", "images/a.jpg", "images/b.png"}
	if len(names) != len(expected) {
		t.Fatalf("Archive entries = %v, expected %v", names, expected)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Entry %d = %q, expected %q", i, names[i], expected[i])
		}
	}
	if contents["images/a.jpg"] != "image-a" {
		t.Errorf("images/a.jpg = %q, expected %q", contents["images/a.jpg"], "image-a")
	}
}

func TestPackage_MissingAnnotationsFails(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	if err := layout.Prepare(); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	if err := Package(layout); err == nil {
		t.Fatal("Expected error when annotations file is missing")
	}
	if _, err := os.Stat(layout.ArchivePath()); !os.IsNotExist(err) {
		t.Errorf("Expected no archive after failure, stat err = %v", err)
	}
}

func TestPackage_ArchiveCannotBeCreated(t *testing.T) {
	root := t.TempDir()
	// A regular file where the output directory should be.
	blocker := filepath.Join(root, "out")
	writeFile(t, blocker, "")

	if err := NewArchive().WriteTo(filepath.Join(blocker, ArchiveFile)); err == nil {
		t.Error("Expected error when archive cannot be opened for writing")
	}
}

func TestPackage_FailureKeepsPreviousArchive(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	if err := layout.Prepare(); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	writeFile(t, layout.ArchivePath(), "previous")

	archive := NewArchive()
	archive.Add("images/missing.jpg", layout.ImagePath("missing.jpg"))
	if err := archive.WriteTo(layout.ArchivePath()); err == nil {
		t.Fatal("Expected error for missing source file")
	}

	data, err := os.ReadFile(layout.ArchivePath())
	if err != nil || string(data) != "previous" {
		t.Errorf("Expected previous archive untouched, got %q (err %v)", string(data), err)
	}
}

func TestArchive_AddOverwrites(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.jpg")
	second := filepath.Join(dir, "second.jpg")
	writeFile(t, first, "first")
	writeFile(t, second, "second")

	archive := NewArchive()
	archive.Add("images/x.jpg", first)
	archive.Add("images/y.jpg", first)
	archive.Add("images/x.jpg", second)

	if names := archive.Names(); len(names) != 2 || names[0] != "images/x.jpg" || names[1] != "images/y.jpg" {
		t.Errorf("Names = %v, expected [images/x.jpg images/y.jpg]", names)
	}

	out := filepath.Join(dir, "out.zip")
	if err := archive.WriteTo(out); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	contents := readZip(t, out)
	if contents["images/x.jpg"] != "second" {
		t.Errorf("images/x.jpg = %q, expected last write to win", contents["images/x.jpg"])
	}
}
