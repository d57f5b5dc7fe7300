// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Used when a decoded buffer's rate differs from the output context rate
package resample

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		position:   0.0,
	}
}

// Resample converts input samples to output sample rate using linear interpolation
// input: interleaved samples at inputRate
// output: interleaved samples at outputRate
func (r *Resampler) Resample(input []float32, output []float32) int {
	if len(input) == 0 {
		return 0
	}

	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels

	outIdx := 0

	for outIdx < outputFrames {
		inputPos := r.position
		inputIdx := int(inputPos)

		// The last input frame has no successor to interpolate towards
		if inputIdx >= inputFrames-1 {
			break
		}

		frac := float32(inputPos - float64(inputIdx))

		for ch := 0; ch < r.channels; ch++ {
			sample1 := input[inputIdx*r.channels+ch]
			sample2 := input[(inputIdx+1)*r.channels+ch]
			output[outIdx*r.channels+ch] = sample1*(1.0-frac) + sample2*frac
		}

		outIdx++
		r.position += r.ratio
	}

	// Reset position for next chunk, keeping fractional part
	r.position -= float64(int(r.position))

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0.0
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames) / r.ratio)
	return outputFrames * r.channels
}

// Convert resamples a whole interleaved block in one call
func Convert(input []float32, inputRate, outputRate, channels int) []float32 {
	if inputRate == outputRate || len(input) == 0 {
		out := make([]float32, len(input))
		copy(out, input)
		return out
	}

	r := New(inputRate, outputRate, channels)
	output := make([]float32, r.OutputSamplesNeeded(len(input)))
	n := r.Resample(input, output)
	return output[:n]
}
