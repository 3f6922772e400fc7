package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxValid(t *testing.T) {
	assert.True(t, Box{0, 0, 10, 10}.Valid())
	assert.False(t, Box{10, 0, 0, 10}.Valid())
	assert.False(t, Box{0, 0, 0, 10}.Valid())
	assert.False(t, Box{}.Valid())
}

func TestBoxArea(t *testing.T) {
	assert.Equal(t, 100.0, Box{0, 0, 10, 10}.Area())
	assert.Equal(t, 0.0, Box{10, 10, 0, 0}.Area())
}

func TestBoxIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b Box
		want float64
	}{
		{
			name: "identical boxes",
			a:    Box{0, 0, 10, 10},
			b:    Box{0, 0, 10, 10},
			want: 1.0,
		},
		{
			name: "disjoint boxes",
			a:    Box{0, 0, 10, 10},
			b:    Box{20, 20, 30, 30},
			want: 0.0,
		},
		{
			name: "touching edges",
			a:    Box{0, 0, 10, 10},
			b:    Box{10, 0, 20, 10},
			want: 0.0,
		},
		{
			name: "quarter overlap",
			a:    Box{0, 0, 10, 10},
			b:    Box{5, 5, 15, 15},
			// intersection 25, union 175
			want: 25.0 / 175.0,
		},
		{
			name: "contained box",
			a:    Box{0, 0, 100, 100},
			b:    Box{5, 5, 95, 95},
			want: 8100.0 / 10000.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.a.IoU(tt.b), 1e-9)
			// IoU is symmetric
			assert.InDelta(t, tt.want, tt.b.IoU(tt.a), 1e-9)
		})
	}
}

func TestBoxIoUInvalidBox(t *testing.T) {
	assert.Equal(t, 0.0, Box{}.IoU(Box{0, 0, 10, 10}))
}
