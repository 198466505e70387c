package audio

import (
	"math"
	"testing"

	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/session"
)

func buffers() [][]float32 {
	return [][]float32{make([]float32, BufferSize), make([]float32, BufferSize)}
}

func peak(buf []float32) float64 {
	var p float64
	for _, v := range buf {
		p = math.Max(p, math.Abs(float64(v)))
	}
	return p
}

func TestSilentWithoutCollisions(t *testing.T) {
	a := NewProcessor()
	out := buffers()
	a.ProcessAudio(nil, out)

	if p := peak(out[0]); p != 0 {
		t.Errorf("expected silence, got peak %f", p)
	}
}

func TestTriggerProducesSound(t *testing.T) {
	a := NewProcessor()
	a.Trigger(700, 0)
	out := buffers()
	a.ProcessAudio(nil, out)

	if peak(out[0]) == 0 || peak(out[1]) == 0 {
		t.Error("expected a click on both channels")
	}
	if a.High == 0 && a.Mid == 0 {
		t.Error("expected spectrum bands to register the click")
	}
}

func TestFasterIsLouder(t *testing.T) {
	soft, loud := NewProcessor(), NewProcessor()
	soft.Trigger(100, 0)
	loud.Trigger(700, 0)

	a, b := buffers(), buffers()
	soft.ProcessAudio(nil, a)
	loud.ProcessAudio(nil, b)

	if peak(b[0]) <= peak(a[0]) {
		t.Errorf("expected louder click, got %f <= %f", peak(b[0]), peak(a[0]))
	}
}

func TestSlowContactSilent(t *testing.T) {
	a := NewProcessor()
	a.Trigger(MinSpeed/2, 0)
	if a.Voices() != 0 {
		t.Error("slow contact should not click")
	}
}

func TestPanning(t *testing.T) {
	a := NewProcessor()
	a.Trigger(700, -1)
	out := buffers()
	a.ProcessAudio(nil, out)

	if peak(out[1]) != 0 {
		t.Errorf("hard-left click leaked into the right channel: %f", peak(out[1]))
	}
}

func TestVoicesDecay(t *testing.T) {
	a := NewProcessor()
	a.Trigger(FullSpeed, 0)
	for range 20 {
		a.ProcessAudio(nil, buffers())
	}
	if a.Voices() != 0 {
		t.Errorf("expected voices to die out, %d left", a.Voices())
	}
}

func TestVoiceLimit(t *testing.T) {
	a := NewProcessor()
	for range maxVoices + 10 {
		a.Trigger(500, 0)
	}
	if a.Voices() != maxVoices {
		t.Errorf("expected %d voices, got %d", maxVoices, a.Voices())
	}
}

func TestOnFrame(t *testing.T) {
	a := NewProcessor()
	a.OnFrame(session.Frame{
		Width: 800,
		Bobs:  []session.BobView{{Index: 0, Position: dynamo.V(300, 350)}},
		Contacts: []session.Collision{
			{A: 0, B: 1, Speed: 600},
			{A: 1, B: 2, Speed: 1},
		},
	})
	if a.Voices() != 1 {
		t.Errorf("expected 1 voice, got %d", a.Voices())
	}
}
