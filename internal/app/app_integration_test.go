package app

import (
	"errors"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/airctrl/internal/capture"
	"github.com/ayusman/airctrl/internal/config"
	"github.com/ayusman/airctrl/internal/detector"
	"github.com/ayusman/airctrl/internal/fixture"
	"github.com/ayusman/airctrl/internal/gesture"
	"github.com/ayusman/airctrl/internal/interaction"
)

func solidFrame(t *testing.T, v uint8) *gocv.Mat {
	t.Helper()
	m := fixture.SolidFrame(v)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestApp_Pipeline_MotionActivatesDetection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	settings := config.Default()
	settings.PluginDir = t.TempDir()
	settings.Camera.IdleFPS = 50
	settings.Camera.ActiveFPS = 100
	settings.Camera.IdleTimeout = config.Duration(time.Minute)

	// a moving object keeps the motion gate active
	frames, err := fixture.MovingSquare(8, 120)
	if err != nil {
		t.Fatal(err)
	}
	defer fixture.Close(frames)
	camera := capture.NewMockCamera(frames, true)

	mock := detector.NewMockDetector()
	mock.SetHands([]detector.HandLandmarks{detector.ThumbsUpLandmarks()})

	a := New(Config{Settings: settings, Camera: camera, Detector: mock})

	confirmed := make(chan interaction.Frame, 1)
	a.Subscribe(func(f interaction.Frame) {
		if f.Label == gesture.LabelThumbUp {
			select {
			case confirmed <- f:
			default:
			}
		}
	})

	modes := make(chan capture.Mode, 4)
	a.OnModeChange(func(m capture.Mode) {
		select {
		case modes <- m:
		default:
		}
	})

	a.SetEnabled(true)
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	select {
	case f := <-confirmed:
		if f.Hands != 1 || !f.HasPointer {
			t.Errorf("frame = %+v", f)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no confirmed gesture; detector calls = %d, camera reads = %d", mock.Calls(), camera.Reads())
	}

	if a.Mode() != capture.ModeActive {
		t.Errorf("mode = %s, want active", a.Mode())
	}
	if camera.FPS() != settings.Camera.ActiveFPS {
		t.Errorf("camera fps = %d, want %d", camera.FPS(), settings.Camera.ActiveFPS)
	}
	if m := <-modes; m != capture.ModeActive {
		t.Errorf("first mode change = %s, want active", m)
	}
}

func TestApp_Pipeline_StillSceneStaysIdle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	settings := config.Default()
	settings.PluginDir = t.TempDir()
	settings.Camera.IdleFPS = 50

	frame := solidFrame(t, 128)
	camera := capture.NewMockCamera([]*gocv.Mat{frame}, true)
	mock := detector.NewMockDetector()
	mock.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})

	a := New(Config{Settings: settings, Camera: camera, Detector: mock})
	a.SetEnabled(true)
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for camera.Reads() < 5 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	a.Stop()

	if camera.Reads() < 5 {
		t.Fatalf("loop read only %d frames", camera.Reads())
	}
	if mock.Calls() != 0 {
		t.Errorf("detector ran %d times on a still scene", mock.Calls())
	}
	if a.Mode() != capture.ModeIdle {
		t.Errorf("mode = %s, want idle", a.Mode())
	}
}

func TestApp_Pipeline_DisabledSkipsFrames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	settings := config.Default()
	settings.PluginDir = t.TempDir()
	settings.Camera.IdleFPS = 50

	camera := capture.NewMockCamera([]*gocv.Mat{solidFrame(t, 0)}, true)
	a := New(Config{Settings: settings, Camera: camera, Detector: detector.NewMockDetector()})
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	a.Stop()

	if camera.Reads() != 0 {
		t.Errorf("disabled app read %d frames", camera.Reads())
	}
}

func TestApp_Pipeline_DetectErrorDropsHand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	settings := config.Default()
	settings.PluginDir = t.TempDir()
	settings.Tuning.GestureStability = 1

	frames, err := fixture.MovingSquare(4, 120)
	if err != nil {
		t.Fatal(err)
	}
	defer fixture.Close(frames)
	camera := capture.NewMockCamera(frames, false)
	if err := camera.Open(); err != nil {
		t.Fatal(err)
	}

	mock := detector.NewMockDetector()
	mock.SetHands([]detector.HandLandmarks{detector.ThumbsUpLandmarks()})

	a := New(Config{Settings: settings, Camera: camera, Detector: mock})
	defer a.Stop()

	// the first frame only sets the motion baseline
	a.step()
	a.step()
	if f := a.LastFrame(); f.Label != gesture.LabelThumbUp || !f.HasPointer {
		t.Fatalf("before failure: frame = %+v, want confirmed Thumb_Up", f)
	}

	mock.SetError(errors.New("service crashed"))
	a.step()
	if f := a.LastFrame(); f.Label != gesture.LabelNone || f.HasPointer {
		t.Errorf("after failure: frame = %+v, want no hand", f)
	}
	if mock.Calls() != 2 {
		t.Errorf("detector calls = %d, want 2", mock.Calls())
	}
}
