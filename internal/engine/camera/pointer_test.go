package camera

import (
	"errors"
	"testing"

	"github.com/Faultbox/surfview/pkg/math"
)

func TestDeviceCoordinates(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want math.Vec2
	}{
		{"top left", 0, 0, math.Vec2{X: -1, Y: 1}},
		{"bottom right", 100, 100, math.Vec2{X: 1, Y: -1}},
		{"center", 50, 50, math.Vec2{X: 0, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPointerState()
			p.RegisterMove(tt.x, tt.y)
			got, err := p.DeviceCoordinates(101, 101)
			if err != nil {
				t.Fatalf("DeviceCoordinates() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DeviceCoordinates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeviceCoordinatesDegenerate(t *testing.T) {
	for _, size := range [][2]int{{1, 100}, {100, 1}, {0, 0}, {1, 1}} {
		p := NewPointerState()
		p.RegisterMove(0, 0)
		_, err := p.DeviceCoordinates(size[0], size[1])
		if !errors.Is(err, ErrDegenerateViewport) {
			t.Errorf("DeviceCoordinates(%d, %d) error = %v, want ErrDegenerateViewport", size[0], size[1], err)
		}
	}
}

func TestRegisterScrollStaysPositive(t *testing.T) {
	p := NewPointerState()
	for i := 0; i < 10000; i++ {
		p.RegisterScroll(1000)
	}
	if p.ZoomFactor() <= 0 {
		t.Errorf("zoom factor = %v after repeated large scrolls, want > 0", p.ZoomFactor())
	}
}

func TestRegisterScrollDirection(t *testing.T) {
	p := NewPointerState()
	start := p.ZoomFactor()

	p.RegisterScroll(1)
	if p.ZoomFactor() >= start {
		t.Errorf("positive scroll should shrink the zoom factor: %v -> %v", start, p.ZoomFactor())
	}

	shrunk := p.ZoomFactor()
	p.RegisterScroll(-1)
	if p.ZoomFactor() <= shrunk {
		t.Errorf("negative scroll should grow the zoom factor: %v -> %v", shrunk, p.ZoomFactor())
	}
}

func TestRegisterButtonIgnoresSecondary(t *testing.T) {
	p := NewPointerState()
	p.RegisterButton(ButtonRight, true)
	p.RegisterButton(ButtonMiddle, true)
	if p.LeftButtonDown() {
		t.Error("secondary buttons should not affect left button state")
	}
	p.RegisterButton(ButtonLeft, true)
	if !p.LeftButtonDown() {
		t.Error("left button press not registered")
	}
	p.RegisterButton(ButtonLeft, false)
	if p.LeftButtonDown() {
		t.Error("left button release not registered")
	}
}

func TestIsInsideViewport(t *testing.T) {
	tests := []struct {
		pos  math.Vec2
		want bool
	}{
		{math.Vec2{X: 0, Y: 0}, true},
		{math.Vec2{X: 1, Y: -1}, true},
		{math.Vec2{X: 1.01, Y: 0}, false},
		{math.Vec2{X: 0, Y: -1.5}, false},
	}
	for _, tt := range tests {
		if got := IsInsideViewport(tt.pos); got != tt.want {
			t.Errorf("IsInsideViewport(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}
