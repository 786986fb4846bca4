package streamer

// bgrToRGB returns a copy of src with the first and third byte of every
// pixel swapped.
func bgrToRGB(src []byte) []byte {
	dst := make([]byte, len(src))
	for i := 0; i+2 < len(src); i += 3 {
		dst[i] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i]
	}
	return dst
}

// bgraToRGB reorders every pixel of src and drops its alpha byte.
func bgraToRGB(src []byte) []byte {
	dst := make([]byte, 0, (len(src)/4)*3)
	for i := 0; i+3 < len(src); i += 4 {
		dst = append(dst, src[i+2], src[i+1], src[i])
	}
	return dst
}
