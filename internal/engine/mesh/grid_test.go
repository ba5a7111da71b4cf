package mesh

import "testing"

func TestGridIndicesSmallGrid(t *testing.T) {
	// 3x2 grid: one strip row covering both column pairs.
	got := GridIndices(3, 2)
	want := []uint32{0, 3, 1, 4, 2, 5}
	if len(got) != len(want) {
		t.Fatalf("index count = %d, want %d", len(got), len(want))
	}
	for i, v := range got {
		if v != want[i] {
			t.Errorf("index[%d] = %d, want %d", i, v, want[i])
		}
	}
}

func TestGridIndicesRowCount(t *testing.T) {
	width, height := 5, 4
	got := GridIndices(width, height)
	// (height-1) strip rows, (width-1)/2 steps each, 6 indices per step.
	want := (height - 1) * ((width - 1) / 2) * 6
	if len(got) != want {
		t.Fatalf("index count = %d, want %d", len(got), want)
	}
	for i, v := range got {
		if int(v) >= width*height {
			t.Fatalf("index[%d] = %d out of range for %d vertices", i, v, width*height)
		}
	}
}

func TestGridIndicesDegenerate(t *testing.T) {
	if got := GridIndices(1, 5); got != nil {
		t.Errorf("GridIndices(1, 5) = %v, want nil", got)
	}
	if got := GridIndices(5, 1); got != nil {
		t.Errorf("GridIndices(5, 1) = %v, want nil", got)
	}
}

func TestVertexIDs(t *testing.T) {
	ids := VertexIDs(3, 2)
	if len(ids) != 6 {
		t.Fatalf("vertex count = %d, want 6", len(ids))
	}
	for i, id := range ids {
		if id != uint32(i) {
			t.Errorf("ids[%d] = %d, want %d", i, id, i)
		}
	}
}
