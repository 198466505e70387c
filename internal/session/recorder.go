package session

import "github.com/san-kum/cradle/internal/dynamo"

// Recording is the trace of a headless run.
type Recording struct {
	Times     []float64
	Positions [][]dynamo.Vec2
	Contacts  []ContactEvent
	Metrics   map[string]float64
}

// ContactEvent is a collision stamped with the frame it happened in.
type ContactEvent struct {
	Frame int     `json:"frame"`
	Time  float64 `json:"time"`
	Collision
}

func (r *Recording) Frames() int { return len(r.Times) }

// Series returns the x coordinate of one bob over time.
func (r *Recording) Series(bob int) []float64 {
	out := make([]float64, 0, len(r.Positions))
	for _, row := range r.Positions {
		if bob < len(row) {
			out = append(out, row[bob].X)
		}
	}
	return out
}

// Recorder is an Observer that appends every frame to a Recording.
type Recorder struct {
	rec Recording
}

func NewRecorder() *Recorder {
	return &Recorder{rec: Recording{Metrics: make(map[string]float64)}}
}

func (r *Recorder) OnFrame(f Frame) {
	row := make([]dynamo.Vec2, len(f.Bobs))
	for i, b := range f.Bobs {
		row[i] = b.Position
	}
	r.rec.Times = append(r.rec.Times, f.Time)
	r.rec.Positions = append(r.rec.Positions, row)
	for _, c := range f.Contacts {
		r.rec.Contacts = append(r.rec.Contacts, ContactEvent{Frame: f.Index, Time: f.Time, Collision: c})
	}
}

func (r *Recorder) Recording() *Recording { return &r.rec }
