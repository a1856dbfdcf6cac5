package scheduler

import (
	"os"
	"path/filepath"

	"cocomarkup/internal/models"

	"github.com/pkg/errors"
)

// Discover turns every immediate subdirectory of sourceRoot into a task writing
// to <outputRoot>/<name>_markup. Regular files at the root are ignored.
func Discover(sourceRoot, outputRoot string) ([]models.Task, error) {
	entries, err := os.ReadDir(sourceRoot)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read source directory %s", sourceRoot)
	}

	tasks := make([]models.Task, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(sourceRoot, entry.Name())
		if !entry.IsDir() {
			// Dowiązania do katalogów też są zadaniami
			if entry.Type()&os.ModeSymlink == 0 {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || !info.IsDir() {
				continue
			}
		}
		tasks = append(tasks, models.NewTask(path, outputRoot))
	}
	return tasks, nil
}

// EnsureWritable creates dir if needed and checks that files can be created in it.
func EnsureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create destination %s", dir)
	}
	probe, err := os.CreateTemp(dir, ".markup-probe-*")
	if err != nil {
		return errors.Wrapf(err, "destination %s is not writable", dir)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}
