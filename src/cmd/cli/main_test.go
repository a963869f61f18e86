package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"roi-snapshot/src/geometry"
	"roi-snapshot/src/palette"
)

// writeTestImage saves a 100x50 image: left half red, right half blue.
func writeTestImage(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if x >= 50 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "window.png")
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("Failed to write test image: %v", err)
	}
	return path
}

func TestNormalizeLegacyArgs(t *testing.T) {
	in := []string{"roi-analyze", "-file", "a.png", "-json", "-rect=1,2,3,4", "--left", "5", "-v"}
	want := []string{"roi-analyze", "--file", "a.png", "--json", "--rect=1,2,3,4", "--left", "5", "-v"}

	got := normalizeLegacyArgs(in)
	if len(got) != len(want) {
		t.Fatalf("Expected len=%d, got %d", len(want), len(got))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("Expected arg[%d]=%q, got %q", i, want[i], got[i])
		}
	}
}

func TestParseRect(t *testing.T) {
	tests := []struct {
		in      string
		want    image.Rectangle
		wantErr bool
	}{
		{"10,20,100,50", image.Rect(10, 20, 110, 70), false},
		{" 0, 0, 1, 1 ", image.Rect(0, 0, 1, 1), false},
		{"1,2,3", image.Rectangle{}, true},
		{"a,b,c,d", image.Rectangle{}, true},
		{"0,0,0,10", image.Rectangle{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRect(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRect(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseRect(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAnalyzeRect(t *testing.T) {
	img, err := imaging.Open(writeTestImage(t))
	if err != nil {
		t.Fatal(err)
	}

	res, err := analyze(img, analyzeInput{
		Rect:     "10,20,20,10",
		Origin:   geometry.Point{X: 500, Y: 300},
		Title:    "Game",
		Clusters: 2,
		Engine:   palette.EngineKMeans,
		Seed:     1,
	})
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	v := res.summary.Views
	if v.Left() != 510 || v.Top() != 320 || v.Right() != 530 || v.Bottom() != 330 {
		t.Errorf("Unexpected absolute view %+v", v.Absolute.Rect)
	}
	if math.Abs(v.Normalized.Rect.X-0.1) > 1e-9 || math.Abs(v.Normalized.Rect.H-0.2) > 1e-9 {
		t.Errorf("Unexpected normalized view %+v", v.Normalized.Rect)
	}
	if len(res.summary.Clusters) == 0 || res.summary.Clusters[0].Hex != "#FF0000" {
		t.Errorf("Expected red ROI, got %+v", res.summary.Clusters)
	}
}

func TestAnalyzeRectOutsideImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if _, err := analyze(img, analyzeInput{Rect: "20,20,5,5"}); err == nil {
		t.Fatal("Expected error for ROI outside the image")
	}
}

func TestRunTextOutput(t *testing.T) {
	path := writeTestImage(t)
	var out bytes.Buffer

	err := runWithArgs([]string{"roi-analyze", "--file", path, "--title", "Paint", "--clusters", "2", "--seed", "7"}, nil, &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{"===== ROI SUMMARY =====", "Paint", "100 x 50", "#FF0000", "#0000FF"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output:\n%s", want, text)
		}
	}
}

func TestRunJSONFromStdin(t *testing.T) {
	data, err := os.ReadFile(writeTestImage(t))
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer

	args := normalizeLegacyArgs([]string{"roi-analyze", "-file", "-", "-json", "-rect", "60,0,40,50", "-seed", "3"})
	err = runWithArgs(args, bytes.NewReader(data), &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var result ROIResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v\n%s", err, out.String())
	}
	if result.Source != "-" {
		t.Errorf("Expected source '-', got %q", result.Source)
	}
	if result.Relative != [4]float64{60, 0, 40, 50} {
		t.Errorf("Unexpected relative rect %v", result.Relative)
	}
	if len(result.Colors) == 0 || result.Colors[0].Hex != "#0000FF" || result.Colors[0].Percent != 100 {
		t.Errorf("Expected all-blue ROI, got %+v", result.Colors)
	}
}

func TestRunInputErrors(t *testing.T) {
	empty := filepath.Join(t.TempDir(), "empty.png")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	valid := writeTestImage(t)
	garbage := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file flag", []string{"roi-analyze"}, "file"},
		{"missing file", []string{"roi-analyze", "--file", filepath.Join(t.TempDir(), "nope.png")}, "failed to read file"},
		{"empty file", []string{"roi-analyze", "--file", empty}, "empty"},
		{"not an image", []string{"roi-analyze", "--file", garbage}, "not a decodable image"},
		{"bad rect", []string{"roi-analyze", "--file", valid, "--rect", "1,2"}, "expected x,y,w,h"},
		{"rect outside image", []string{"roi-analyze", "--file", valid, "--rect", "500,500,5,5"}, "lies outside"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runWithArgs(tt.args, nil, &bytes.Buffer{})
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
