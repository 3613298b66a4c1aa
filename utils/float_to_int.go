// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 converts a normalized sample to signed 16-bit PCM.
// Values outside [-1, 1] are clamped.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 keeps +1.0 from wrapping around
	return int16(x * 32767.0)
}

// Int16ToFloat32 converts signed 16-bit PCM to a normalized sample.
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// IntToFloat32 normalizes an integer PCM sample of the given bit depth.
// Unknown depths are treated as 16-bit.
func IntToFloat32(v int, bitDepth int) float32 {
	return float32(v) / FullScale(bitDepth)
}

// FullScale returns the magnitude of the most negative value for bitDepth.
func FullScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		if bitDepth > 0 && bitDepth < 32 && bitDepth != 16 {
			return float32(int64(1) << (bitDepth - 1))
		}
		return 32768.0
	}
}

// Float32ToInt16Slice converts src into dst and returns the number of samples
// written, which is min(len(dst), len(src)).
func Float32ToInt16Slice(dst []int16, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = Float32ToInt16(src[i])
	}
	return n
}
