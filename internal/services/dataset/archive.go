package dataset

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
)

type archiveEntry struct {
	Name string // ścieżka w archiwum, zawsze z "/"
	Path string // plik na dysku
}

// Archive collects named files for a zip container. Adding a name twice keeps
// the first position and the last source.
type Archive struct {
	entries []archiveEntry
	index   map[string]int
}

// NewArchive creates an empty archive plan.
func NewArchive() *Archive {
	return &Archive{index: make(map[string]int)}
}

// Add schedules the file at source to be stored under name.
func (a *Archive) Add(name, source string) {
	if i, ok := a.index[name]; ok {
		a.entries[i].Path = source
		return
	}
	a.index[name] = len(a.entries)
	a.entries = append(a.entries, archiveEntry{Name: name, Path: source})
}

// Names returns the archive paths in write order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.Name
	}
	return names
}

// WriteTo builds the zip at archivePath. The container is written to a temporary
// file and renamed on success, so a failed build never replaces a good archive.
func (a *Archive) WriteTo(archivePath string) error {
	dir := filepath.Dir(archivePath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(archivePath)+".*")
	if err != nil {
		return errors.Wrapf(err, "error creating zip %s", archivePath)
	}
	tmpName := tmp.Name()

	if err := a.write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "error setting permissions on zip %s", archivePath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "error closing zip %s", archivePath)
	}
	if err := os.Rename(tmpName, archivePath); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "error moving zip %s into place", archivePath)
	}
	return nil
}

func (a *Archive) write(w io.Writer) error {
	zipWriter := zip.NewWriter(w)
	for _, entry := range a.entries {
		if err := addFileToZip(zipWriter, entry); err != nil {
			return err
		}
	}
	if err := zipWriter.Close(); err != nil {
		return errors.Wrap(err, "error finalizing zip")
	}
	return nil
}

func addFileToZip(zipWriter *zip.Writer, entry archiveEntry) error {
	info, err := os.Stat(entry.Path)
	if err != nil {
		return errors.Wrapf(err, "error adding file to zip: %s", entry.Path)
	}
	if !info.Mode().IsRegular() {
		return errors.Errorf("error adding file to zip: %s is not a regular file", entry.Path)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return errors.Wrapf(err, "error adding file to zip: %s", entry.Path)
	}
	header.Name = entry.Name
	header.Method = zip.Deflate

	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return errors.Wrapf(err, "error adding file to zip: %s", entry.Path)
	}
	source, err := os.Open(entry.Path)
	if err != nil {
		return errors.Wrapf(err, "error adding file to zip: %s", entry.Path)
	}
	defer source.Close()

	if _, err := io.Copy(writer, source); err != nil {
		return errors.Wrapf(err, "error adding file to zip: %s", entry.Path)
	}
	return nil
}

// Package writes <root>/annotations.zip holding the annotations JSON and every
// regular file under <root>/images.
func Package(l Layout) error {
	archive := NewArchive()
	archive.Add(path.Join(AnnotationsDir, AnnotationsFile), l.AnnotationsPath())

	entries, err := os.ReadDir(l.ImagesPath())
	if err != nil {
		return errors.Wrapf(err, "error listing %s", l.ImagesPath())
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		archive.Add(path.Join(ImagesDir, entry.Name()), l.ImagePath(entry.Name()))
	}

	return archive.WriteTo(l.ArchivePath())
}
