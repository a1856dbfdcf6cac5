package dataset

import "cocomarkup/internal/models"

// Assembler accumulates image and annotation records for one dataset build.
// Ids start at 1 and increase by one per accepted image; it is not safe for
// concurrent use and belongs to a single task.
type Assembler struct {
	category         models.Category
	nextImageID      int
	nextAnnotationID int
	images           []models.ImageRecord
	annotations      []models.AnnotationRecord
}

// NewAssembler starts a build whose annotations are tagged with category.
func NewAssembler(category models.Category) *Assembler {
	return &Assembler{
		category:         category,
		nextImageID:      1,
		nextAnnotationID: 1,
		images:           make([]models.ImageRecord, 0),
		annotations:      make([]models.AnnotationRecord, 0),
	}
}

// Add records one decoded image and its polygons, returning the assigned image id.
func (a *Assembler) Add(fileName string, width, height int, polygons []models.Polygon) int {
	if polygons == nil {
		polygons = make([]models.Polygon, 0)
	}

	imageID := a.nextImageID
	a.nextImageID++

	a.annotations = append(a.annotations, models.AnnotationRecord{
		ID:           a.nextAnnotationID,
		ImageID:      imageID,
		CategoryID:   a.category.ID,
		Segmentation: polygons,
		IsCrowd:      0,
	})
	a.nextAnnotationID++

	a.images = append(a.images, models.ImageRecord{
		ID:       imageID,
		FileName: fileName,
		Width:    width,
		Height:   height,
	})
	return imageID
}

// Len returns the number of images added so far.
func (a *Assembler) Len() int {
	return len(a.images)
}

// Dataset returns the assembled document.
func (a *Assembler) Dataset() *models.Dataset {
	return &models.Dataset{
		Annotations: a.annotations,
		Categories:  []models.Category{a.category},
		Images:      a.images,
	}
}
