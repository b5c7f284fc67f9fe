package joint

import "Fastener/internal/calc/policy"

// Request is the serialized joint description. Quantities carry their unit
// in the field name; each quantity may be given in SI or US units, never
// both. Pointer fields are optional.
type Request struct {
	JointID       string           `json:"joint_id" yaml:"joint_id"`
	Standard      string           `json:"standard,omitempty" yaml:"standard,omitempty"`
	Configuration string           `json:"configuration,omitempty" yaml:"configuration,omitempty"`
	Thread        ThreadInput      `json:"thread" yaml:"thread"`
	Fastener      FastenerInput    `json:"fastener" yaml:"fastener"`
	Nut           *NutInput        `json:"nut,omitempty" yaml:"nut,omitempty"`
	Insert        *InsertInput     `json:"insert,omitempty" yaml:"insert,omitempty"`
	Parent        *ParentInput     `json:"parent,omitempty" yaml:"parent,omitempty"`
	Parts         []PartInput      `json:"parts" yaml:"parts"`
	Washers       []WasherInput    `json:"washers,omitempty" yaml:"washers,omitempty"`
	Preload       PreloadInput     `json:"preload" yaml:"preload"`
	Loads         LoadInput        `json:"loads" yaml:"loads"`
	SafetyFactors *policy.Override `json:"safety_factors,omitempty" yaml:"safety_factors,omitempty"`
}

type ThreadInput struct {
	Series         string   `json:"series" yaml:"series"`
	DiameterMM     *float64 `json:"diameter_mm,omitempty" yaml:"diameter_mm,omitempty"`
	DiameterIn     *float64 `json:"diameter_in,omitempty" yaml:"diameter_in,omitempty"`
	PitchMM        *float64 `json:"pitch_mm,omitempty" yaml:"pitch_mm,omitempty"`
	ThreadsPerInch *float64 `json:"threads_per_inch,omitempty" yaml:"threads_per_inch,omitempty"`
	Class          string   `json:"class,omitempty" yaml:"class,omitempty"`
	Hand           string   `json:"hand,omitempty" yaml:"hand,omitempty"`
	Starts         int      `json:"starts,omitempty" yaml:"starts,omitempty"`
	// Engagement is the length of thread engagement with the nut, tapped
	// hole or insert.
	EngagementMM *float64 `json:"engagement_mm,omitempty" yaml:"engagement_mm,omitempty"`
	EngagementIn *float64 `json:"engagement_in,omitempty" yaml:"engagement_in,omitempty"`
}

type FastenerInput struct {
	Material string   `json:"material" yaml:"material"`
	LengthMM *float64 `json:"length_mm,omitempty" yaml:"length_mm,omitempty"`
	LengthIn *float64 `json:"length_in,omitempty" yaml:"length_in,omitempty"`
	// head bearing surface, outer diameter
	HeadDiameterMM *float64 `json:"head_bearing_diameter_mm,omitempty" yaml:"head_bearing_diameter_mm,omitempty"`
	HeadDiameterIn *float64 `json:"head_bearing_diameter_in,omitempty" yaml:"head_bearing_diameter_in,omitempty"`
	HoleDiameterMM *float64 `json:"hole_diameter_mm,omitempty" yaml:"hole_diameter_mm,omitempty"`
	HoleDiameterIn *float64 `json:"hole_diameter_in,omitempty" yaml:"hole_diameter_in,omitempty"`
	// rated tensile strength of the fastener, replaces Ftu·At
	UltimateLoadN       *float64 `json:"ultimate_load_N,omitempty" yaml:"ultimate_load_N,omitempty"`
	UltimateLoadLbf     *float64 `json:"ultimate_load_lbf,omitempty" yaml:"ultimate_load_lbf,omitempty"`
	ThreadsInShearPlane bool     `json:"threads_in_shear_plane,omitempty" yaml:"threads_in_shear_plane,omitempty"`
}

type NutInput struct {
	Material          string   `json:"material" yaml:"material"`
	BearingDiameterMM *float64 `json:"bearing_diameter_mm,omitempty" yaml:"bearing_diameter_mm,omitempty"`
	BearingDiameterIn *float64 `json:"bearing_diameter_in,omitempty" yaml:"bearing_diameter_in,omitempty"`
}

type InsertInput struct {
	Material string   `json:"material" yaml:"material"`
	LengthMM *float64 `json:"length_mm,omitempty" yaml:"length_mm,omitempty"`
	LengthIn *float64 `json:"length_in,omitempty" yaml:"length_in,omitempty"`
}

// ParentInput names the tapped part when it is not the last clamped part's
// material.
type ParentInput struct {
	Material string `json:"material" yaml:"material"`
}

type PartInput struct {
	Material       string   `json:"material" yaml:"material"`
	ThicknessMM    *float64 `json:"thickness_mm,omitempty" yaml:"thickness_mm,omitempty"`
	ThicknessIn    *float64 `json:"thickness_in,omitempty" yaml:"thickness_in,omitempty"`
	EdgeDistanceMM *float64 `json:"edge_distance_mm,omitempty" yaml:"edge_distance_mm,omitempty"`
	EdgeDistanceIn *float64 `json:"edge_distance_in,omitempty" yaml:"edge_distance_in,omitempty"`
}

type WasherInput struct {
	Material    string   `json:"material" yaml:"material"`
	ThicknessMM *float64 `json:"thickness_mm,omitempty" yaml:"thickness_mm,omitempty"`
	ThicknessIn *float64 `json:"thickness_in,omitempty" yaml:"thickness_in,omitempty"`
}

type PreloadInput struct {
	Method     string   `json:"method,omitempty" yaml:"method,omitempty"`
	Lubricated bool     `json:"lubricated,omitempty" yaml:"lubricated,omitempty"`
	PreloadN   *float64 `json:"preload_N,omitempty" yaml:"preload_N,omitempty"`
	PreloadLbf *float64 `json:"preload_lbf,omitempty" yaml:"preload_lbf,omitempty"`
	MinN       *float64 `json:"min_N,omitempty" yaml:"min_N,omitempty"`
	MinLbf     *float64 `json:"min_lbf,omitempty" yaml:"min_lbf,omitempty"`
	MaxN       *float64 `json:"max_N,omitempty" yaml:"max_N,omitempty"`
	MaxLbf     *float64 `json:"max_lbf,omitempty" yaml:"max_lbf,omitempty"`
	// UncertaintyPct replaces the method's preload variation, in percent.
	UncertaintyPct *float64 `json:"uncertainty_pct,omitempty" yaml:"uncertainty_pct,omitempty"`
	TorqueNmm      *float64 `json:"torque_Nmm,omitempty" yaml:"torque_Nmm,omitempty"`
	TorqueInLbf    *float64 `json:"torque_inlbf,omitempty" yaml:"torque_inlbf,omitempty"`
	// TorqueTolerancePct is the ± tolerance of the torque specification.
	TorqueTolerancePct *float64 `json:"torque_tolerance_pct,omitempty" yaml:"torque_tolerance_pct,omitempty"`
	NutFactor          *float64 `json:"nut_factor,omitempty" yaml:"nut_factor,omitempty"`
	RelaxationPct      *float64 `json:"relaxation_pct,omitempty" yaml:"relaxation_pct,omitempty"`
	CreepN             *float64 `json:"creep_loss_N,omitempty" yaml:"creep_loss_N,omitempty"`
	CreepLbf           *float64 `json:"creep_loss_lbf,omitempty" yaml:"creep_loss_lbf,omitempty"`
	FastenerCount      int      `json:"fastener_count,omitempty" yaml:"fastener_count,omitempty"`
	SeparationCritical bool     `json:"separation_critical,omitempty" yaml:"separation_critical,omitempty"`
}

type LoadInput struct {
	TensionN          *float64 `json:"tension_N,omitempty" yaml:"tension_N,omitempty"`
	TensionLbf        *float64 `json:"tension_lbf,omitempty" yaml:"tension_lbf,omitempty"`
	ShearN            *float64 `json:"shear_N,omitempty" yaml:"shear_N,omitempty"`
	ShearLbf          *float64 `json:"shear_lbf,omitempty" yaml:"shear_lbf,omitempty"`
	TemperatureDeltaC *float64 `json:"temperature_delta_C,omitempty" yaml:"temperature_delta_C,omitempty"`
	TemperatureDeltaF *float64 `json:"temperature_delta_F,omitempty" yaml:"temperature_delta_F,omitempty"`
	// LoadIntroduction is the loading-plane factor n.
	LoadIntroduction *float64 `json:"load_introduction_factor,omitempty" yaml:"load_introduction_factor,omitempty"`
	StiffnessFactor  *float64 `json:"stiffness_factor,omitempty" yaml:"stiffness_factor,omitempty"`
	Friction         *float64 `json:"friction_coefficient,omitempty" yaml:"friction_coefficient,omitempty"`
}
