package fit

import "math"

// edtInf stands in for infinity in the squared-distance passes. It must stay
// far above any real squared distance but finite so the envelope
// intersections below remain ordinary arithmetic.
const edtInf = 1e20

// exactDistanceTransform returns, for every pixel of a rows x cols mask, the
// squared Euclidean distance from its center to the nearest zero pixel
// center. It is the separable lower-envelope transform of Felzenszwalb and
// Huttenlocher, run over columns and then rows.
func exactDistanceTransform(mask []byte, rows, cols int) []float64 {
	out := make([]float64, rows*cols)
	for i, v := range mask {
		if v != 0 {
			out[i] = edtInf
		}
	}

	n := rows
	if cols > n {
		n = cols
	}
	f := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			f[y] = out[y*cols+x]
		}
		edt1D(f[:rows], d[:rows], v, z)
		for y := 0; y < rows; y++ {
			out[y*cols+x] = d[y]
		}
	}

	for y := 0; y < rows; y++ {
		row := out[y*cols : (y+1)*cols]
		copy(f[:cols], row)
		edt1D(f[:cols], d[:cols], v, z)
		copy(row, d[:cols])
	}
	return out
}

// edt1D computes d[q] = min_p (q-p)^2 + f[p] over the lower envelope of
// parabolas rooted at each p.
func edt1D(f, d []float64, v []int, z []float64) {
	n := len(f)
	if n == 0 {
		return
	}

	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)
	for q := 1; q < n; q++ {
		s := intersect(f, q, v[k])
		for s <= z[k] {
			k--
			s = intersect(f, q, v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}

func intersect(f []float64, q, p int) float64 {
	fq, fp := float64(q), float64(p)
	return ((f[q] + fq*fq) - (f[p] + fp*fp)) / (2*fq - 2*fp)
}

// peak returns the row-major index and value of the largest entry.
func peak(values []float64) (int, float64) {
	best, bestVal := 0, math.Inf(-1)
	for i, v := range values {
		if v > bestVal {
			best, bestVal = i, v
		}
	}
	return best, bestVal
}
