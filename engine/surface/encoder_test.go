package surface

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name        string
		indices     []uint32
		vertexCount int
		want        *Attribute
	}{
		{
			name:        "one triangle",
			indices:     []uint32{0, 1, 2},
			vertexCount: 3,
			want: &Attribute{
				Data:       []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1},
				Components: 1,
				MaxLabel:   1,
			},
		},
		{
			name:        "two disjoint triangles",
			indices:     []uint32{0, 1, 2, 3, 4, 5},
			vertexCount: 6,
			want: &Attribute{
				Data: []float32{
					0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1,
					1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1,
				},
				Components: 2,
				MaxLabel:   2,
			},
		},
		{
			name:        "unreferenced vertex gets the default label",
			indices:     []uint32{3, 4, 5, 0, 1, 2},
			vertexCount: 7,
			want: &Attribute{
				Data: []float32{
					1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1,
					0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1,
					DefaultLabel, 0, 0, 1,
				},
				Components: 2,
				MaxLabel:   2,
			},
		},
		{
			name:        "degenerate mesh clamps MaxLabel",
			indices:     []uint32{},
			vertexCount: 2,
			want: &Attribute{
				Data:     []float32{0, 0, 0, 1, 0, 0, 0, 1},
				MaxLabel: 1,
			},
		},
		{
			name:        "no vertices",
			indices:     []uint32{},
			vertexCount: 0,
			want:        &Attribute{Data: []float32{}, MaxLabel: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Partition(tt.indices, tt.vertexCount, nil)
			if err != nil {
				t.Fatalf("Partition: %v", err)
			}
			if d := cmp.Diff(tt.want, got); d != "" {
				t.Errorf("attribute mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestEncodeNormalizationIsFinite(t *testing.T) {
	for _, indices := range [][]uint32{{}, {0, 1, 2}, {0, 1, 2, 3, 4, 5, 6, 7, 8}} {
		attr, err := Partition(indices, 9, nil)
		if err != nil {
			t.Fatal(err)
		}
		if attr.MaxLabel != uint32(max(attr.Components, 1)) {
			t.Errorf("MaxLabel = %d, want max(%d, 1)", attr.MaxLabel, attr.Components)
		}
		for v := 0; v < attr.VertexCount(); v++ {
			n := float64(attr.LabelOf(v)) / float64(attr.MaxLabel)
			if math.IsNaN(n) || math.IsInf(n, 0) {
				t.Errorf("vertex %d normalizes to %v", v, n)
			}
		}
	}
}

func TestEncodeIndexOutOfRange(t *testing.T) {
	if _, err := Partition([]uint32{0, 1, 9}, 3, nil); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("got %v, want ErrIndexOutOfRange", err)
	}
}

func TestPartitionFailureKeepsLabelState(t *testing.T) {
	state := &LabelState{NextLabel: 4}
	if _, err := Partition([]uint32{0, 1, 5}, 3, state); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("got %v, want ErrIndexOutOfRange", err)
	}
	if state.NextLabel != 4 {
		t.Errorf("NextLabel = %d after a failed mesh, want 4", state.NextLabel)
	}

	// two triangles, two components
	attr, err := Partition([]uint32{0, 1, 2, 3, 4, 5}, 6, state)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if state.NextLabel != 6 {
		t.Errorf("NextLabel = %d, want 6", state.NextLabel)
	}
	if attr.LabelOf(0) != 4 || attr.LabelOf(3) != 5 {
		t.Errorf("labels = (%d, %d), want (4, 5)", attr.LabelOf(0), attr.LabelOf(3))
	}
}

func TestPartitionMissingIndexBuffer(t *testing.T) {
	if _, err := Partition(nil, 3, nil); !errors.Is(err, ErrMissingIndexBuffer) {
		t.Errorf("got %v, want ErrMissingIndexBuffer", err)
	}
}
