package dataset

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"cocomarkup/internal/models"

	"github.com/pkg/errors"
)

const (
	AnnotationsDir  = "annotations"
	ImagesDir       = "images"
	AnnotationsFile = "instances_default.json"
	ArchiveFile     = "annotations.zip"
)

// Layout resolves the fixed file layout under a task's output directory.
type Layout struct {
	Root string
}

// AnnotationsPath is <root>/annotations/instances_default.json.
func (l Layout) AnnotationsPath() string {
	return filepath.Join(l.Root, AnnotationsDir, AnnotationsFile)
}

// ImagesPath is <root>/images.
func (l Layout) ImagesPath() string {
	return filepath.Join(l.Root, ImagesDir)
}

// ImagePath is <root>/images/<fileName>.
func (l Layout) ImagePath(fileName string) string {
	return filepath.Join(l.Root, ImagesDir, fileName)
}

// ArchivePath is <root>/annotations.zip.
func (l Layout) ArchivePath() string {
	return filepath.Join(l.Root, ArchiveFile)
}

// Prepare creates the annotations and images directories. Images left over from
// an earlier run are removed so the archive only carries this build's files.
func (l Layout) Prepare() error {
	if err := os.MkdirAll(filepath.Join(l.Root, AnnotationsDir), 0755); err != nil {
		return errors.Wrapf(err, "failed to create annotations directory in %s", l.Root)
	}
	if err := os.RemoveAll(l.ImagesPath()); err != nil {
		return errors.Wrapf(err, "failed to clear %s", l.ImagesPath())
	}
	if err := os.MkdirAll(l.ImagesPath(), 0755); err != nil {
		return errors.Wrapf(err, "failed to create images directory in %s", l.Root)
	}
	return nil
}

// Encode renders the dataset as 4-space indented JSON.
func Encode(ds *models.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ds); err != nil {
		return nil, errors.Wrap(err, "failed to encode dataset")
	}
	return buf.Bytes(), nil
}

// WriteDataset writes the dataset to the layout's annotations path. The document is
// written to a temporary file first so a reader never sees a partial file.
func WriteDataset(l Layout, ds *models.Dataset) error {
	data, err := Encode(ds)
	if err != nil {
		return err
	}
	return writeFileAtomic(l.AnnotationsPath(), data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file in %s", dir)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to set permissions on %s", tmpName)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to close %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to move %s into place", path)
	}
	return nil
}
