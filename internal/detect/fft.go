package detect

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// fft2 computes the 2-D discrete Fourier transform of a width×height
// real plane, rows first then columns.
func fft2(data []float64, width, height int) []complex128 {
	out := make([]complex128, width*height)
	for i, v := range data {
		out[i] = complex(v, 0)
	}

	rowFFT := fourier.NewCmplxFFT(width)
	row := make([]complex128, width)
	for y := 0; y < height; y++ {
		copy(row, out[y*width:(y+1)*width])
		rowFFT.Coefficients(out[y*width:(y+1)*width], row)
	}

	colFFT := fourier.NewCmplxFFT(height)
	col := make([]complex128, height)
	colOut := make([]complex128, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = out[y*width+x]
		}
		colFFT.Coefficients(colOut, col)
		for y := 0; y < height; y++ {
			out[y*width+x] = colOut[y]
		}
	}
	return out
}

// ifft2 inverts fft2, including the 1/(width*height) normalization that
// the unnormalized transform pair omits.
func ifft2(coeffs []complex128, width, height int) []complex128 {
	out := make([]complex128, width*height)
	copy(out, coeffs)

	colFFT := fourier.NewCmplxFFT(height)
	col := make([]complex128, height)
	colOut := make([]complex128, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = out[y*width+x]
		}
		colFFT.Sequence(colOut, col)
		for y := 0; y < height; y++ {
			out[y*width+x] = colOut[y]
		}
	}

	rowFFT := fourier.NewCmplxFFT(width)
	row := make([]complex128, width)
	for y := 0; y < height; y++ {
		copy(row, out[y*width:(y+1)*width])
		rowFFT.Sequence(out[y*width:(y+1)*width], row)
	}

	scale := complex(1/float64(width*height), 0)
	for i := range out {
		out[i] *= scale
	}
	return out
}

// fftShift reorders a spectrum so the zero-frequency component sits at
// (height/2, width/2).
func fftShift(coeffs []complex128, width, height int) []complex128 {
	out := make([]complex128, len(coeffs))
	halfW, halfH := width/2, height/2
	for y := 0; y < height; y++ {
		ny := (y + halfH) % height
		for x := 0; x < width; x++ {
			nx := (x + halfW) % width
			out[ny*width+nx] = coeffs[y*width+x]
		}
	}
	return out
}

// ifftShift undoes fftShift for both even and odd dimensions.
func ifftShift(coeffs []complex128, width, height int) []complex128 {
	out := make([]complex128, len(coeffs))
	halfW, halfH := (width+1)/2, (height+1)/2
	for y := 0; y < height; y++ {
		ny := (y + halfH) % height
		for x := 0; x < width; x++ {
			nx := (x + halfW) % width
			out[ny*width+nx] = coeffs[y*width+x]
		}
	}
	return out
}
