package vector

import "math"

// DotProduct returns the inner product of two vectors. For unit-normalized
// vectors it equals cosine similarity. Returns 0 when lengths differ.
func DotProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector is zero or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, asq, bsq float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		asq += float64(a[i]) * float64(a[i])
		bsq += float64(b[i]) * float64(b[i])
	}
	if asq == 0 || bsq == 0 {
		return 0
	}
	return dot / (math.Sqrt(asq) * math.Sqrt(bsq))
}

// CosineDistance returns 1 - CosineSimilarity(a, b), clamped at 0 so rounding
// on identical vectors never yields a negative distance. A zero vector lands
// at distance 1 rather than NaN.
func CosineDistance(a, b []float32) float64 {
	d := 1 - CosineSimilarity(a, b)
	if d < 0 {
		return 0
	}
	return d
}

func l2(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
