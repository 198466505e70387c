package metrics

import (
	"math"

	"github.com/san-kum/cradle/internal/session"
)

// Energy is the mean total energy over the observed frames.
type Energy struct {
	gravity     float64
	samples     int
	totalEnergy float64
}

func NewEnergy(gravity float64) *Energy {
	return &Energy{gravity: gravity}
}

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(f session.Frame) {
	e.totalEnergy += TotalEnergy(f, e.gravity)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation from the first non-zero
// energy observed.
type EnergyDrift struct {
	gravity       float64
	initialEnergy float64
	maxDrift      float64
}

func NewEnergyDrift(gravity float64) *EnergyDrift {
	return &EnergyDrift{gravity: gravity}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(f session.Frame) {
	energy := TotalEnergy(f, e.gravity)
	if e.initialEnergy == 0 {
		e.initialEnergy = energy
		return
	}
	drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
}
