package vectorstore

import (
	"encoding/binary"
	"math"
)

// encodeVector packs a []float32 into a little-endian byte blob, grounded
// on the teacher's vec_compat.go decodeFloat32 byte layout (4 bytes per
// component, binary.LittleEndian, math.Float32frombits/bits).
func encodeVector(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// decodeVector is the inverse of encodeVector.
func decodeVector(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

// normalize L2-normalizes v in place and returns it, matching §4.3's
// "the store normalizes on insert" invariant.
func normalize(v []float32) []float32 {
	var sumSq float64
	for _, f := range v {
		sumSq += float64(f) * float64(f)
	}
	if sumSq == 0 {
		return v
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range v {
		v[i] /= norm
	}
	return v
}

// cosineSimilarity assumes both vectors are already L2-normalized, so it
// reduces to a plain dot product.
func cosineSimilarity(a, b []float32) float32 {
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}
