package sim

import (
	"fmt"
	"math"
)

const (
	// ImpactorDensity is the assumed bulk density of the impactor in kg/m³.
	ImpactorDensity = 1500.0
	// JoulesPerMegaton is the TNT equivalence used for the megaton figure.
	JoulesPerMegaton = 4.184e15

	craterCoefficient = 25.0
	craterExponent    = 1 / 3.4
)

// ImpactReport holds the derived impact figures at full precision.
type ImpactReport struct {
	MassKg              float64
	VelocityMetersPerS  float64
	KineticEnergyJoules float64
	MegatonsTNT         float64
	CraterDiameterKm    float64
}

// Analyze derives energy and crater size from the impactor. Callers must pass
// a validated config; non-positive size or speed gives non-finite figures.
func Analyze(c ImpactorConfig) ImpactReport {
	radius := c.SizeMeters / 2
	mass := ImpactorDensity * (4.0 / 3.0) * math.Pi * radius * radius * radius
	velocity := c.SpeedKmPerSec * 1000
	energy := 0.5 * mass * velocity * velocity
	megatons := energy / JoulesPerMegaton

	return ImpactReport{
		MassKg:              mass,
		VelocityMetersPerS:  velocity,
		KineticEnergyJoules: energy,
		MegatonsTNT:         megatons,
		CraterDiameterKm:    craterCoefficient * math.Pow(megatons, craterExponent) / 1000,
	}
}

// ShakeIntensity is the camera shake amplitude the impact starts with.
func (r ImpactReport) ShakeIntensity() float64 {
	return math.Log10(r.KineticEnergyJoules) / 5 * 0.5
}

func (r ImpactReport) EnergyJoulesText() string { return fmt.Sprintf("%.2e", r.KineticEnergyJoules) }
func (r ImpactReport) MegatonsText() string     { return fmt.Sprintf("%.2f", r.MegatonsTNT) }
func (r ImpactReport) CraterText() string       { return fmt.Sprintf("%.2f km", r.CraterDiameterKm) }

// Lines renders the report panel.
func (r ImpactReport) Lines() []string {
	return []string{
		"Impact Analysis",
		"Impact Energy (J): " + r.EnergyJoulesText(),
		"Impact Energy (MT): " + r.MegatonsText(),
		"Est. Crater Diameter: " + r.CraterText(),
	}
}
