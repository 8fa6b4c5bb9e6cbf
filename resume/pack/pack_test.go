package pack

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"resume2portfolio/resume/render"
)

func TestZipContainsEveryFile(t *testing.T) {
	files := render.FileSet{
		"index.html":  "<h1>Ada</h1>",
		"styles.css":  "h1 { color: red; }",
		"src/App.jsx": "export default App;",
	}
	data, err := Zip(files)
	if err != nil {
		t.Fatalf("zip: %v", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(reader.File) != len(files) {
		t.Fatalf("expected %d entries, got %d", len(files), len(reader.File))
	}
	wantOrder := []string{"index.html", "src/App.jsx", "styles.css"}
	for i, f := range reader.File {
		if f.Name != wantOrder[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, wantOrder[i], f.Name)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		if string(content) != files[f.Name] {
			t.Fatalf("%s: content mismatch", f.Name)
		}
	}
}

func TestZipIsDeterministic(t *testing.T) {
	files := render.FileSet{"a.txt": "one", "b.txt": "two"}
	first, err := Zip(files)
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	second, err := Zip(files)
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical archives for identical input")
	}
}

func TestZipEmptySet(t *testing.T) {
	data, err := Zip(render.FileSet{})
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(reader.File) != 0 {
		t.Fatalf("expected empty archive")
	}
}
