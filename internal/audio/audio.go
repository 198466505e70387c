// Package audio plays a short percussive click for every collision in a
// running cradle.
package audio

import (
	"log/slog"
	"math"
	"math/cmplx"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/cradle/internal/session"
)

const (
	SampleRate = 44100
	BufferSize = 1024

	// MinSpeed is the impact speed (px/s) below which contacts stay silent.
	MinSpeed = 20.0
	// FullSpeed is the impact speed that plays at full volume.
	FullSpeed = 800.0

	maxVoices = 32
)

// steel-ball partials, in Hz
var partials = []float64{2350, 3810, 5120}

type voice struct {
	amp   float64
	pan   float64
	age   float64
	decay float64
}

type Processor struct {
	Stream *portaudio.Stream

	// Output analysis of the last buffer
	complexBuffer   []complex128
	Bass, Mid, High float64

	mu     sync.Mutex
	voices []voice

	time        float64
	filterState [2]float64
	delayLine   [2][]float64
	delayHead   int

	Volume float64
	Active bool
}

func NewProcessor() *Processor {
	// short slap-back room
	delayLen := int(float64(SampleRate) * 0.045)

	return &Processor{
		complexBuffer: make([]complex128, BufferSize),
		delayLine:     [2][]float64{make([]float64, delayLen), make([]float64, delayLen)},
		Volume:        0.6,
	}
}

func (a *Processor) Start() error {
	if err := portaudio.Initialize(); err != nil {
		slog.Error("audio init failed", "error", err)
		return err
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, a.ProcessAudio)
	if err != nil {
		slog.Error("audio stream open failed", "error", err)
		portaudio.Terminate()
		return err
	}
	if err := stream.Start(); err != nil {
		slog.Error("audio stream start failed", "error", err)
		stream.Close()
		portaudio.Terminate()
		return err
	}

	slog.Info("audio started", "sample_rate", SampleRate, "buffer", BufferSize)
	a.Stream = stream
	a.Active = true
	return nil
}

func (a *Processor) Stop() {
	if a.Stream != nil {
		a.Stream.Stop()
		a.Stream.Close()
		a.Stream = nil
	}
	if a.Active {
		portaudio.Terminate()
	}
	a.Active = false
}

// Trigger queues one click. Speed sets loudness; pan runs from -1 (left) to
// 1 (right).
func (a *Processor) Trigger(speed, pan float64) {
	if speed < MinSpeed {
		return
	}
	amp := math.Min(speed/FullSpeed, 1)

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.voices) >= maxVoices {
		a.voices = a.voices[1:]
	}
	a.voices = append(a.voices, voice{
		amp:   amp,
		pan:   math.Max(-1, math.Min(pan, 1)),
		decay: 90 + 60*amp,
	})
}

// OnFrame triggers a click for every contact in the frame, panned by where
// on screen it happened.
func (a *Processor) OnFrame(f session.Frame) {
	if len(f.Contacts) == 0 || f.Width <= 0 {
		return
	}
	for _, c := range f.Contacts {
		pan := 0.0
		for _, b := range f.Bobs {
			if b.Index == c.A {
				pan = b.Position.X/f.Width*2 - 1
				break
			}
		}
		a.Trigger(c.Speed, pan)
	}
}

func (a *Processor) Voices() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.voices)
}

// Low Pass Filter (One Pole)
func lpf(sample, cutoff, dt, state float64) (float64, float64) {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	out := state + alpha*(sample-state)
	return out, out
}

// ProcessAudio is the portaudio callback. The input is unused.
func (a *Processor) ProcessAudio(in []float32, out [][]float32) {
	dt := 1.0 / float64(SampleRate)

	a.mu.Lock()
	voices := a.voices
	a.mu.Unlock()

	for i := range out[0] {
		var sampleL, sampleR float64
		for v := range voices {
			vc := &voices[v]
			env := vc.amp * math.Exp(-vc.decay*vc.age)
			var s float64
			for k, f := range partials {
				s += math.Sin(2*math.Pi*f*vc.age) / float64(k+1)
			}
			s *= env
			sampleL += s * (1 - vc.pan) / 2
			sampleR += s * (1 + vc.pan) / 2
			vc.age += dt
		}

		var outL, outR float64
		outL, a.filterState[0] = lpf(sampleL, 6000, dt, a.filterState[0])
		outR, a.filterState[1] = lpf(sampleR, 6000, dt, a.filterState[1])

		delayL := a.delayLine[0][a.delayHead]
		delayR := a.delayLine[1][a.delayHead]
		mixL := outL + delayL*0.25
		mixR := outR + delayR*0.25
		a.delayLine[0][a.delayHead] = mixL * 0.4
		a.delayLine[1][a.delayHead] = mixR * 0.4
		a.delayHead = (a.delayHead + 1) % len(a.delayLine[0])

		out[0][i] = float32(math.Max(-1, math.Min(mixL*a.Volume, 1)))
		out[1][i] = float32(math.Max(-1, math.Min(mixR*a.Volume, 1)))
		a.time += dt
	}

	a.mu.Lock()
	// Trigger may have appended while we were rendering; keep those.
	fresh := a.voices[len(voices):]
	alive := voices[:0]
	for _, vc := range voices {
		if vc.amp*math.Exp(-vc.decay*vc.age) > 1e-4 {
			alive = append(alive, vc)
		}
	}
	a.voices = append(alive, fresh...)
	a.mu.Unlock()

	a.analyze(out[0])
}

// analyze splits the spectrum of the last buffer into three smoothed bands.
func (a *Processor) analyze(buf []float32) {
	n := min(len(buf), len(a.complexBuffer))
	for i := range a.complexBuffer {
		a.complexBuffer[i] = 0
	}
	for i := 0; i < n; i++ {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(BufferSize-1)))
		a.complexBuffer[i] = complex(float64(buf[i])*window, 0)
	}
	spectrum := fft.FFT(a.complexBuffer)

	bassSum, midSum, highSum := 0.0, 0.0, 0.0
	for i := 0; i < BufferSize/2; i++ {
		mag := cmplx.Abs(spectrum[i])
		switch {
		case i < 12:
			bassSum += mag
		case i < 70:
			midSum += mag
		default:
			highSum += mag
		}
	}

	a.Bass = a.Bass*0.8 + math.Min(bassSum/50, 1)*0.2
	a.Mid = a.Mid*0.8 + math.Min(midSum/50, 1)*0.2
	a.High = a.High*0.8 + math.Min(highSum/50, 1)*0.2
}
