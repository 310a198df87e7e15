package services

import "github.com/spad0604/robot-delivery/internal/domain"

// Downsample reduces a path to at most max points spread evenly along it.
//
// Paths already within the limit are returned unchanged. Longer paths keep
// exactly max points at indices floor(i*(N-1)/(max-1)), so the first and
// last points always survive. Repeated indices are kept as-is.
func Downsample(coords []domain.Coordinates, max int) []domain.Coordinates {
	if max < 2 {
		max = 2
	}

	n := len(coords)
	if n <= max {
		return coords
	}

	out := make([]domain.Coordinates, 0, max)
	for i := 0; i < max; i++ {
		out = append(out, coords[i*(n-1)/(max-1)])
	}
	return out
}
