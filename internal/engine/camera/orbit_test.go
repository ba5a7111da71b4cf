package camera

import (
	"testing"

	"github.com/Faultbox/surfview/pkg/math"
)

func TestOrbitDefaultTilt(t *testing.T) {
	o := NewOrbitTransform()
	if o.Current() == math.Identity() {
		t.Error("default orientation should be tilted, not identity")
	}
}

func TestOrbitNoOpDrag(t *testing.T) {
	o := NewOrbitTransform()
	before := o.Current()

	p := math.Vec2{X: 0.3, Y: -0.2}
	o.BeginDrag(p)
	o.UpdateDrag(p)

	if o.Current() != before {
		t.Errorf("drag without movement changed the rotation:\ngot  %v\nwant %v", o.Current(), before)
	}
}

func TestOrbitAnchorRelativeDrag(t *testing.T) {
	// Dragging A -> B -> C must land exactly where A -> C does:
	// intermediate updates are relative to the drag anchor, not to
	// each other.
	a := math.Vec2{X: -0.5, Y: 0.1}
	b := math.Vec2{X: 0.0, Y: 0.3}
	c := math.Vec2{X: 0.4, Y: -0.2}

	stepped := NewOrbitTransform()
	stepped.BeginDrag(a)
	stepped.UpdateDrag(b)
	stepped.UpdateDrag(c)

	direct := NewOrbitTransform()
	direct.BeginDrag(a)
	direct.UpdateDrag(c)

	if stepped.Current() != direct.Current() {
		t.Errorf("stepped drag diverged from direct drag:\ngot  %v\nwant %v", stepped.Current(), direct.Current())
	}
}

func TestOrbitDragChangesRotation(t *testing.T) {
	o := NewOrbitTransform()
	before := o.Current()

	o.BeginDrag(math.Vec2{X: 0, Y: 0})
	o.UpdateDrag(math.Vec2{X: 0.5, Y: 0})

	if o.Current() == before {
		t.Error("drag with movement should change the rotation")
	}
}

func TestOrbitRotationStaysOrthonormal(t *testing.T) {
	o := NewOrbitTransform()
	o.BeginDrag(math.Vec2{X: -0.8, Y: 0.1})
	o.UpdateDrag(math.Vec2{X: 0.7, Y: -0.6})

	m := o.Current()
	cols := [3]math.Vec3{
		{X: m[0], Y: m[1], Z: m[2]},
		{X: m[4], Y: m[5], Z: m[6]},
		{X: m[8], Y: m[9], Z: m[10]},
	}
	for i, c := range cols {
		l := c.Length()
		if l < 0.9999 || l > 1.0001 {
			t.Errorf("column %d length = %v, want 1", i, l)
		}
	}
	// No translation component
	if m[12] != 0 || m[13] != 0 || m[14] != 0 || m[15] != 1 {
		t.Errorf("rotation picked up a translation component: %v", m)
	}
}

func TestOrbitReset(t *testing.T) {
	o := NewOrbitTransform()
	o.BeginDrag(math.Vec2{X: -0.3, Y: 0.9})
	o.UpdateDrag(math.Vec2{X: 0.8, Y: -0.8})
	o.BeginDrag(math.Vec2{X: 0.1, Y: 0.1})
	o.UpdateDrag(math.Vec2{X: 0.2, Y: 0.6})

	o.Reset()

	fresh := NewOrbitTransform()
	if o.Current() != fresh.Current() {
		t.Errorf("Reset() did not restore the default orientation bit-for-bit:\ngot  %v\nwant %v", o.Current(), fresh.Current())
	}
}
