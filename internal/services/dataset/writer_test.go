package dataset

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cocomarkup/internal/models"
)

func TestEncode_Schema(t *testing.T) {
	a := NewAssembler(models.Category{ID: 1, Name: "drone"})
	a.Add("a.jpg", 640, 480, []models.Polygon{{1, 2, 3, 4, 5, 6}})
	a.Add("b.jpg", 320, 240, nil)

	data, err := Encode(a.Dataset())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Top-level key order is part of the format.
	text := string(data)
	ia := strings.Index(text, `"annotations"`)
	ic := strings.Index(text, `"categories"`)
	ii := strings.Index(text, `"images"`)
	if ia < 0 || ic < 0 || ii < 0 || !(ia < ic && ic < ii) {
		t.Errorf("Expected keys annotations, categories, images in order, got:\n%s", text)
	}
	if !strings.Contains(text, "\n    \"annotations\"") {
		t.Errorf("Expected 4-space indentation, got:\n%s", text)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(doc) != 3 {
		t.Errorf("Expected exactly 3 top-level keys, got %d", len(doc))
	}

	var decoded struct {
		Annotations []map[string]interface{} `json:"annotations"`
		Categories  []map[string]interface{} `json:"categories"`
		Images      []map[string]interface{} `json:"images"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	expectedAnnotationKeys := []string{"id", "image_id", "category_id", "segmentation", "iscrowd"}
	for _, key := range expectedAnnotationKeys {
		if _, ok := decoded.Annotations[0][key]; !ok {
			t.Errorf("Annotation missing key %q", key)
		}
	}
	expectedImageKeys := []string{"id", "file_name", "width", "height"}
	for _, key := range expectedImageKeys {
		if _, ok := decoded.Images[0][key]; !ok {
			t.Errorf("Image missing key %q", key)
		}
	}
	if decoded.Categories[0]["name"] != "drone" {
		t.Errorf("Category name = %v, expected drone", decoded.Categories[0]["name"])
	}
}

func TestEncode_EmptySegmentationIsArray(t *testing.T) {
	a := NewAssembler(models.Category{ID: 1, Name: "drone"})
	a.Add("a.jpg", 10, 10, nil)

	data, err := Encode(a.Dataset())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(data), `"segmentation": []`) {
		t.Errorf("Expected empty segmentation array, got:\n%s", string(data))
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("Expected no null values, got:\n%s", string(data))
	}
}

func TestEncode_EmptyDataset(t *testing.T) {
	data, err := Encode(NewAssembler(models.Category{ID: 1, Name: "drone"}).Dataset())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(data), `"annotations": []`) || !strings.Contains(string(data), `"images": []`) {
		t.Errorf("Expected empty arrays, got:\n%s", string(data))
	}
}

func TestEncode_Deterministic(t *testing.T) {
	build := func() []byte {
		a := NewAssembler(models.Category{ID: 1, Name: "drone"})
		a.Add("a.jpg", 5, 5, []models.Polygon{{0, 0, 0, 4, 4, 4, 4, 0}})
		data, err := Encode(a.Dataset())
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		return data
	}

	if first, second := build(), build(); !bytes.Equal(first, second) {
		t.Errorf("Expected identical output, got:\n%s\n---\n%s", first, second)
	}
}

func TestWriteDataset(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	if err := layout.Prepare(); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	a := NewAssembler(models.Category{ID: 1, Name: "drone"})
	a.Add("a.jpg", 10, 10, nil)
	if err := WriteDataset(layout, a.Dataset()); err != nil {
		t.Fatalf("WriteDataset failed: %v", err)
	}

	expected := filepath.Join(layout.Root, "annotations", "instances_default.json")
	data, err := os.ReadFile(expected)
	if err != nil {
		t.Fatalf("Expected %s to exist: %v", expected, err)
	}

	var ds models.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		t.Fatalf("Written file is not valid JSON: %v", err)
	}
	if len(ds.Images) != 1 || ds.Images[0].FileName != "a.jpg" {
		t.Errorf("Images = %v, expected one record for a.jpg", ds.Images)
	}

	entries, err := os.ReadDir(filepath.Dir(expected))
	if err != nil {
		t.Fatalf("Failed to list annotations dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected no temporary files left behind, got %d entries", len(entries))
	}
}

func TestWriteDataset_MissingDirectory(t *testing.T) {
	layout := Layout{Root: filepath.Join(t.TempDir(), "never-created")}

	err := WriteDataset(layout, NewAssembler(models.Category{ID: 1, Name: "drone"}).Dataset())
	if err == nil {
		t.Error("Expected error when annotations directory is missing")
	}
}

func TestLayout_PrepareClearsStaleImages(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	if err := layout.Prepare(); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	stale := layout.ImagePath("old.jpg")
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatalf("Failed to write stale image: %v", err)
	}

	if err := layout.Prepare(); err != nil {
		t.Fatalf("Second Prepare failed: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("Expected %s to be removed, stat err = %v", stale, err)
	}
	if info, err := os.Stat(layout.ImagesPath()); err != nil || !info.IsDir() {
		t.Errorf("Expected images directory to exist, err = %v", err)
	}
}
