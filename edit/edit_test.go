package edit

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mbmp/mbmp"
)

func testBitmap(w, h int) *mbmp.Bitmap {
	b := mbmp.New(w, h)
	for y := range h {
		for x := range w {
			b.SetPixel(x, y, mbmp.Color{A: 255, R: uint8(x), G: uint8(y), B: uint8(x + y)})
		}
	}
	return b
}

func TestInfo(t *testing.T) {
	dir := t.TempDir()
	standalone := filepath.Join(dir, "a.mbmp")
	if err := mbmp.Save(standalone, testBitmap(3, 2)); err != nil {
		t.Fatal(err)
	}

	raw := filepath.Join(dir, "b.mbraw")
	var buf bytes.Buffer
	if err := testBitmap(5, 1).AppendTo(&buf); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(raw, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	pngPath := filepath.Join(dir, "c.png")
	f, err := os.Create(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 7, 9))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	var out bytes.Buffer
	cmd := InfoCmd{Files: []string{standalone, raw, pngPath}}
	if err := cmd.Run(&out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := []string{
		standalone + "\tmbmp\t3x2\t6 pixels",
		raw + "\tmbmp-raw\t5x1\t5 pixels",
		pngPath + "\tpng\t7x9\t63 pixels",
	}
	if len(lines) != len(want) {
		t.Fatalf("output = %q", out.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	junk := filepath.Join(dir, "junk")
	if err := os.WriteFile(junk, []byte("junk data"), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd = InfoCmd{Files: []string{junk, standalone}}
	out.Reset()
	if err := cmd.Run(&out); err == nil {
		t.Fatalf("Run succeeded on junk input")
	}
	if !strings.Contains(out.String(), "3x2") {
		t.Fatalf("valid file after junk not described: %q", out.String())
	}
}

func TestCrop(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.mbmp")
	src := testBitmap(6, 4)
	if err := mbmp.Save(in, src); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out.mbmp")
	cmd := CropCmd{In: in, Out: out, Rect: "1,2,4,2", Output: Output{Level: -1}}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, err := mbmp.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(src.Rectangle(image.Rect(1, 2, 5, 4))) {
		t.Fatalf("cropped bitmap differs")
	}

	for _, rect := range []string{"4,0,3,1", "0,0,1", "a,b,c,d", "0,0,-1,1"} {
		cmd.Rect = rect
		if err := cmd.Run(); err == nil {
			t.Fatalf("Run with rect %q succeeded", rect)
		}
	}
}

func TestDraw(t *testing.T) {
	dir := t.TempDir()
	destPath := filepath.Join(dir, "dest.mbmp")
	srcPath := filepath.Join(dir, "src.mbmp")

	dst := mbmp.New(2, 2)
	red := mbmp.New(1, 1)
	red.SetPixel(0, 0, mbmp.Color{A: 255, R: 255})
	if err := mbmp.Save(destPath, dst); err != nil {
		t.Fatal(err)
	}
	if err := mbmp.Save(srcPath, red); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out.mbraw")
	cmd := DrawCmd{Dest: destPath, Src: srcPath, Out: out, At: "1,1", Output: Output{Embedded: true}}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := mbmp.DecodeEmbedded(f, mbmp.Strict())
	if err != nil {
		t.Fatalf("DecodeEmbedded: %v", err)
	}
	want := mbmp.New(2, 2)
	want.SetPixel(1, 1, mbmp.Color{A: 255, R: 255})
	if !got.Equal(want) {
		t.Fatalf("composited bitmap differs")
	}

	cmd.At = "1"
	if err := cmd.Run(); err == nil {
		t.Fatalf("Run with malformed point succeeded")
	}
}
