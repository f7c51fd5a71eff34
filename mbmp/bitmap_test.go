package mbmp

import (
	"image"
	"image/color"
	"testing"
)

func makeTestBitmap(w, h int) *Bitmap {
	b := New(w, h)
	for y := range h {
		for x := range w {
			b.SetPixel(x, y, Color{
				A: uint8(x*29 + y*3),
				R: uint8((x * 17) ^ (y * 31)),
				G: uint8((x * 43) + (y * 13)),
				B: uint8((x * 7) ^ (y * 11)),
			})
		}
	}
	return b
}

func expectPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	f()
}

func TestNew(t *testing.T) {
	b := New(3, 2)
	if b.Width() != 3 || b.Height() != 2 {
		t.Fatalf("size = %dx%d, want 3x2", b.Width(), b.Height())
	}
	if got := len(b.Pix()); got != 3*2*4 {
		t.Fatalf("len(Pix) = %d, want %d", got, 3*2*4)
	}
	if got := b.Pixel(2, 1); got != (Color{}) {
		t.Fatalf("new pixel = %+v, want zero", got)
	}
	if got := b.Bounds(); got != image.Rect(0, 0, 3, 2) {
		t.Fatalf("bounds = %v", got)
	}

	expectPanic(t, "negative width", func() { New(-1, 2) })
	expectPanic(t, "negative height", func() { New(1, -2) })
}

func TestPixel_RowMajor(t *testing.T) {
	b := New(3, 2)
	c := Color{A: 1, R: 2, G: 3, B: 4}
	b.SetPixel(1, 1, c)

	if got := b.Pixel(1, 1); got != c {
		t.Fatalf("Pixel(1,1) = %+v, want %+v", got, c)
	}
	i := (3*1 + 1) * 4
	if got := b.Pix()[i : i+4]; got[0] != 1 || got[1] != 2 || got[2] != 3 || got[3] != 4 {
		t.Fatalf("storage at %d = %v, want [1 2 3 4]", i, got)
	}
}

func TestPixel_OutOfRange(t *testing.T) {
	b := New(3, 2)
	for _, tc := range []struct {
		name string
		x, y int
	}{
		{name: "negative_x", x: -1, y: 0},
		{name: "negative_y", x: 0, y: -1},
		{name: "x_at_width", x: 3, y: 0},
		{name: "y_at_height", x: 0, y: 2},
		{name: "far", x: 100, y: 100},
	} {
		t.Run(tc.name, func(t *testing.T) {
			expectPanic(t, "Pixel", func() { b.Pixel(tc.x, tc.y) })
			expectPanic(t, "SetPixel", func() { b.SetPixel(tc.x, tc.y, Color{}) })
		})
	}
}

func TestAtSet_ImageContract(t *testing.T) {
	b := New(2, 2)
	b.Set(5, 5, color.White)
	if got := b.At(5, 5); got != (Color{}) {
		t.Fatalf("At outside = %v, want zero Color", got)
	}

	b.Set(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	if got, want := b.Pixel(1, 0), (Color{A: 40, R: 10, G: 20, B: 30}); got != want {
		t.Fatalf("Pixel after Set = %+v, want %+v", got, want)
	}
	if got, want := b.At(1, 0), (Color{A: 40, R: 10, G: 20, B: 30}); got != want {
		t.Fatalf("At = %v, want %v", got, want)
	}
}

func TestFillCloneEqual(t *testing.T) {
	b := New(4, 3)
	red := Color{A: 255, R: 255}
	b.Fill(red)
	for y := range 3 {
		for x := range 4 {
			if got := b.Pixel(x, y); got != red {
				t.Fatalf("Pixel(%d,%d) = %+v after Fill", x, y, got)
			}
		}
	}

	c := b.Clone()
	if !c.Equal(b) {
		t.Fatalf("clone differs from source")
	}
	c.SetPixel(0, 0, Color{})
	if c.Equal(b) || b.Pixel(0, 0) != red {
		t.Fatalf("clone shares storage with source")
	}
	if New(2, 6).Equal(New(6, 2)) {
		t.Fatalf("bitmaps with different dimensions compare equal")
	}
}

func TestRectangle(t *testing.T) {
	src := makeTestBitmap(7, 5)

	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 7, 5),
		image.Rect(0, 0, 1, 1),
		image.Rect(2, 1, 6, 4),
		image.Rect(6, 4, 7, 5),
		image.Rect(3, 0, 4, 5),
	} {
		t.Run(r.String(), func(t *testing.T) {
			got := src.Rectangle(r)
			if got.Width() != r.Dx() || got.Height() != r.Dy() {
				t.Fatalf("size = %dx%d, want %dx%d", got.Width(), got.Height(), r.Dx(), r.Dy())
			}
			for j := range r.Dy() {
				for i := range r.Dx() {
					if got.Pixel(i, j) != src.Pixel(r.Min.X+i, r.Min.Y+j) {
						t.Fatalf("pixel (%d,%d) mismatch", i, j)
					}
				}
			}
		})
	}
}

func TestRectangle_Identity(t *testing.T) {
	src := makeTestBitmap(5, 4)
	got := src.Rectangle(src.Bounds())
	if !got.Equal(src) {
		t.Fatalf("full rectangle differs from source")
	}

	got.SetPixel(0, 0, Color{A: 1})
	if src.Pixel(0, 0) == got.Pixel(0, 0) {
		t.Fatalf("rectangle shares storage with source")
	}
}

func TestRectangle_Empty(t *testing.T) {
	got := makeTestBitmap(3, 3).Rectangle(image.Rect(10, 10, 10, 14))
	if got.Width() != 0 || got.Height() != 4 || len(got.Pix()) != 0 {
		t.Fatalf("empty rectangle = %dx%d with %d bytes", got.Width(), got.Height(), len(got.Pix()))
	}
}

func TestRectangle_OutOfRange(t *testing.T) {
	src := makeTestBitmap(4, 4)
	for _, r := range []image.Rectangle{
		image.Rect(2, 2, 5, 4),
		image.Rect(0, 3, 4, 5),
		image.Rect(-1, 0, 2, 2),
	} {
		expectPanic(t, r.String(), func() { src.Rectangle(r) })
	}
}

func TestDrawBitmap(t *testing.T) {
	red := Color{A: 255, R: 255}

	t.Run("inside", func(t *testing.T) {
		src := New(1, 1)
		src.SetPixel(0, 0, red)
		dst := New(2, 2)
		dst.DrawBitmap(src, image.Pt(1, 1))

		for y := range 2 {
			for x := range 2 {
				want := Color{}
				if x == 1 && y == 1 {
					want = red
				}
				if got := dst.Pixel(x, y); got != want {
					t.Fatalf("Pixel(%d,%d) = %+v, want %+v", x, y, got, want)
				}
			}
		}
	})

	t.Run("outside", func(t *testing.T) {
		src := New(1, 1)
		src.SetPixel(0, 0, red)
		dst := New(1, 1)
		dst.DrawBitmap(src, image.Pt(1, 1))
		if got := dst.Pixel(0, 0); got != (Color{}) {
			t.Fatalf("destination modified: %+v", got)
		}
	})

	t.Run("clipped", func(t *testing.T) {
		src := makeTestBitmap(4, 4)
		dst := New(5, 5)
		fill := Color{A: 9, R: 9, G: 9, B: 9}
		dst.Fill(fill)
		at := image.Pt(-2, 3)
		dst.DrawBitmap(src, at)

		for y := range 5 {
			for x := range 5 {
				sx, sy := x-at.X, y-at.Y
				want := fill
				if sx >= 0 && sx < 4 && sy >= 0 && sy < 4 {
					want = src.Pixel(sx, sy)
				}
				if got := dst.Pixel(x, y); got != want {
					t.Fatalf("Pixel(%d,%d) = %+v, want %+v", x, y, got, want)
				}
			}
		}
	})

	t.Run("transparent_overwrites", func(t *testing.T) {
		src := New(2, 1)
		src.SetPixel(0, 0, Color{A: 0, R: 1, G: 2, B: 3})
		dst := New(2, 1)
		dst.Fill(red)
		dst.DrawBitmap(src, image.Point{})
		if got, want := dst.Pixel(0, 0), (Color{A: 0, R: 1, G: 2, B: 3}); got != want {
			t.Fatalf("Pixel(0,0) = %+v, want %+v", got, want)
		}
		if got := dst.Pixel(1, 0); got != (Color{}) {
			t.Fatalf("Pixel(1,0) = %+v, want zero", got)
		}
	})
}
