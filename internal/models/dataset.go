package models

// Polygon is a flat list of boundary vertices: x0, y0, x1, y1, ...
type Polygon []int

// ImageRecord represents one decoded input image in a COCO dataset.
type ImageRecord struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// AnnotationRecord holds the segmentation of a single image.
type AnnotationRecord struct {
	ID           int       `json:"id"`
	ImageID      int       `json:"image_id"`
	CategoryID   int       `json:"category_id"`
	Segmentation []Polygon `json:"segmentation"`
	IsCrowd      int       `json:"iscrowd"`
}

// Category names the class every annotation is tagged with.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Dataset is the COCO document written to instances_default.json.
// Field order defines the key order of the encoded document.
type Dataset struct {
	Annotations []AnnotationRecord `json:"annotations"`
	Categories  []Category         `json:"categories"`
	Images      []ImageRecord      `json:"images"`
}
