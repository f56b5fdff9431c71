package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/airctrl/internal/fixture"
)

func TestMockCamera_Playback(t *testing.T) {
	frames, err := fixture.MovingSquare(3, 80)
	if err != nil {
		t.Fatal(err)
	}
	defer fixture.Close(frames)

	tests := []struct {
		name      string
		loop      bool
		reads     int
		wantReads int
		wantErr   error
	}{
		{"plays once", false, 4, 3, ErrNoFrames},
		{"loops", true, 7, 7, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewMockCamera(frames, tt.loop)
			if err := cam.Open(); err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer cam.Close()

			var lastErr error
			for i := 0; i < tt.reads; i++ {
				f, err := cam.ReadFrame()
				if err != nil {
					lastErr = err
					continue
				}
				f.Close()
			}
			if !errors.Is(lastErr, tt.wantErr) {
				t.Errorf("last error = %v, want %v", lastErr, tt.wantErr)
			}
			if cam.Reads() != tt.wantReads {
				t.Errorf("Reads() = %d, want %d", cam.Reads(), tt.wantReads)
			}
		})
	}

	// closing a handed-out frame leaves the recording intact
	if frames[0].Empty() {
		t.Error("recorded frame was released by a reader")
	}
}

func TestMockCamera_Mirror(t *testing.T) {
	frames, err := fixture.MovingSquare(2, 100)
	if err != nil {
		t.Fatal(err)
	}
	defer fixture.Close(frames)

	cam := NewMockCamera(frames[:1], false)
	cam.SetMirror(true)
	cam.Open()
	defer cam.Close()

	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	defer f.Close()

	row := fixture.Height / 2
	if v := f.GetVecbAt(row, fixture.Width-1); v[0] != 255 {
		t.Errorf("mirrored right edge = %v, want white", v)
	}
	if v := frames[0].GetVecbAt(row, 0); v[0] != 255 {
		t.Errorf("recording was mirrored in place: left edge = %v", v)
	}
}

func TestMockCamera_SetFramesRestarts(t *testing.T) {
	black := fixture.SolidFrame(0)
	defer black.Close()
	white := fixture.SolidFrame(255)
	defer white.Close()

	cam := NewMockCamera(nil, false)
	cam.Open()
	defer cam.Close()

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("empty playback error = %v, want ErrNoFrames", err)
	}

	cam.SetFrames([]*gocv.Mat{black, white})
	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if v := f.GetVecbAt(0, 0); v[0] != 0 {
		t.Errorf("first frame after SetFrames = %v, want black", v)
	}
	f.Close()
}

func TestMockCamera_NotOpen(t *testing.T) {
	cam := NewMockCamera(nil, false)
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() before Open()")
	}
}

func TestMockCamera_FPS(t *testing.T) {
	cam := NewMockCamera(nil, false)
	cam.SetFPS(15)
	cam.SetFPS(0)
	if cam.FPS() != 15 {
		t.Errorf("FPS() = %d, want 15", cam.FPS())
	}
}
