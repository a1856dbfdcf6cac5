package markup

import (
	"os"
	"path/filepath"

	"cocomarkup/internal/config"
	"cocomarkup/internal/logger"
	"cocomarkup/internal/models"
	"cocomarkup/internal/services/dataset"
	"cocomarkup/internal/services/vision"

	"github.com/pkg/errors"
)

// Result summarizes one processed directory.
type Result struct {
	Layout  dataset.Layout
	Dataset *models.Dataset
	Images  int
	Skipped []string
}

// Processor runs the markup pipeline on one input directory at a time. It keeps
// no per-task state, so one Processor can serve every worker.
type Processor struct {
	category models.Category
	masks    *vision.MaskBuilder
	logger   *logger.Logger
}

// NewProcessor creates a processor tagging annotations with the configured category.
func NewProcessor(cfg *config.Config, logger *logger.Logger) *Processor {
	return &Processor{
		category: models.Category{ID: cfg.CategoryID, Name: cfg.CategoryName},
		masks:    vision.NewMaskBuilder(vision.ThresholdsFromConfig(cfg)),
		logger:   logger,
	}
}

// Run processes task and reports how many images made it into the dataset.
func (p *Processor) Run(task models.Task) (int, error) {
	result, err := p.Process(task)
	if err != nil {
		return 0, err
	}
	return result.Images, nil
}

// Process builds the dataset for task.InputDir into task.OutputDir: images that
// cannot be decoded or re-encoded are skipped, everything else is copied, traced,
// serialized, and packaged. Any returned error means the task failed.
func (p *Processor) Process(task models.Task) (*Result, error) {
	layout := dataset.Layout{Root: task.OutputDir}
	if err := layout.Prepare(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(task.InputDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", task.InputDir)
	}

	assembler := dataset.NewAssembler(p.category)
	result := &Result{Layout: layout}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(task.InputDir, entry.Name())
		if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
			continue
		}

		if err := p.processImage(path, entry.Name(), layout, assembler); err != nil {
			p.logger.Warning("Skipping %s: %v", path, err)
			result.Skipped = append(result.Skipped, entry.Name())
			continue
		}
	}

	result.Dataset = assembler.Dataset()
	result.Images = assembler.Len()

	if err := dataset.WriteDataset(layout, result.Dataset); err != nil {
		return nil, err
	}
	if err := dataset.Package(layout); err != nil {
		return nil, err
	}

	p.logger.Info("Processed %s: %d image(s), %d skipped -> %s",
		task.InputDir, result.Images, len(result.Skipped), layout.ArchivePath())
	return result, nil
}

// processImage handles a single file. Ids are only assigned once the image has
// been decoded, traced, and copied.
func (p *Processor) processImage(path, name string, layout dataset.Layout, assembler *dataset.Assembler) error {
	img, err := vision.LoadImage(path)
	if err != nil {
		return err
	}
	defer img.Close()

	mask, err := p.masks.Build(img)
	if err != nil {
		return err
	}
	defer mask.Close()

	polygons := vision.ExtractPolygons(mask)

	if err := vision.SaveImage(layout.ImagePath(name), img); err != nil {
		return err
	}

	assembler.Add(name, img.Cols(), img.Rows(), polygons)
	return nil
}
