package vision

import (
	"cocomarkup/internal/models"

	"gocv.io/x/gocv"
)

// ExtractPolygons traces the external boundary of every foreground region in mask.
// Holes are not reported and collinear boundary points are dropped. An empty mask
// yields an empty, non-nil slice.
func ExtractPolygons(mask gocv.Mat) []models.Polygon {
	polygons := make([]models.Polygon, 0)
	if mask.Empty() {
		return polygons
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	for i := 0; i < contours.Size(); i++ {
		points := contours.At(i).ToPoints()
		polygon := make(models.Polygon, 0, len(points)*2)
		for _, p := range points {
			polygon = append(polygon, p.X, p.Y)
		}
		polygons = append(polygons, polygon)
	}
	return polygons
}
