package fixture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestSolidFrame(t *testing.T) {
	frame := SolidFrame(200)
	defer frame.Close()

	if frame.Rows() != Height || frame.Cols() != Width || frame.Channels() != 3 {
		t.Fatalf("frame is %dx%dx%d", frame.Cols(), frame.Rows(), frame.Channels())
	}
	if v := frame.GetVecbAt(10, 10); v[0] != 200 || v[2] != 200 {
		t.Errorf("pixel = %v, want 200", v)
	}
}

func TestMovingSquare(t *testing.T) {
	frames, err := MovingSquare(5, 100)
	if err != nil {
		t.Fatalf("MovingSquare() error = %v", err)
	}
	defer Close(frames)

	if len(frames) != 5 {
		t.Fatalf("got %d frames, want 5", len(frames))
	}

	// consecutive frames differ
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(*frames[0], *frames[1], &diff)
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(diff, &gray, gocv.ColorBGRToGray)
	if gocv.CountNonZero(gray) == 0 {
		t.Error("consecutive frames are identical")
	}

	for _, bad := range [][2]int{{0, 10}, {3, 0}, {3, Height}} {
		if _, err := MovingSquare(bad[0], bad[1]); err == nil {
			t.Errorf("MovingSquare(%d, %d) should fail", bad[0], bad[1])
		}
	}
}
