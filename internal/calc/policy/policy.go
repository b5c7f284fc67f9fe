// Package policy holds the safety-factor policies of the supported
// standards. A Standard is immutable; program overrides produce a Policy
// without touching the Standard they start from.
package policy

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"Fastener/internal/calc/calcerr"
	"Fastener/internal/calc/failure"
	"Fastener/internal/calc/loads"
)

type Role string

const (
	RoleUltimate   Role = "ultimate"
	RoleYield      Role = "yield"
	RoleSeparation Role = "separation"
)

type SafetyFactors struct {
	Ultimate   float64 `json:"ultimate" yaml:"ultimate"`
	Yield      float64 `json:"yield" yaml:"yield"`
	Separation float64 `json:"separation" yaml:"separation"`
	Fitting    float64 `json:"fitting" yaml:"fitting"`
}

func (f SafetyFactors) validate() error {
	for name, v := range map[string]float64{
		"ultimate":   f.Ultimate,
		"yield":      f.Yield,
		"separation": f.Separation,
		"fitting":    f.Fitting,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 1.0 {
			return calcerr.Newf(calcerr.CodeConfiguration, "%s factor must be a finite number >= 1.0, got %g", name, v)
		}
	}
	return nil
}

func (f SafetyFactors) forRole(r Role) float64 {
	switch r {
	case RoleYield:
		return f.Yield
	case RoleSeparation:
		return f.Separation
	default:
		return f.Ultimate
	}
}

// roles maps every failure mode to the factor that governs it.
var roles = map[failure.Mode]Role{
	failure.ModeYield:                     RoleYield,
	failure.ModeUltimate:                  RoleUltimate,
	failure.ModeSeparation:                RoleSeparation,
	failure.ModeThreadShearFastener:       RoleUltimate,
	failure.ModeThreadShearNut:            RoleUltimate,
	failure.ModeThreadShearInsertInternal: RoleUltimate,
	failure.ModeThreadShearInsertExternal: RoleUltimate,
	failure.ModeThreadShearParent:         RoleUltimate,
	failure.ModeJointBearing:              RoleUltimate,
	failure.ModeBoltBearing:               RoleUltimate,
	failure.ModeShearTearOut:              RoleUltimate,
	failure.ModeJointSlip:                 RoleYield,
	failure.ModeFastenerShear:             RoleUltimate,
	failure.ModeCombined:                  RoleUltimate,
}

func RoleOf(m failure.Mode) Role { return roles[m] }

// Standard is a versioned, read-only policy handle.
type Standard struct {
	name     string
	version  string
	factors  SafetyFactors
	fitting  map[failure.Mode]bool
	preload  loads.Defaults
	friction float64
}

func (s *Standard) Name() string                    { return s.name }
func (s *Standard) Version() string                 { return s.version }
func (s *Standard) Factors() SafetyFactors          { return s.factors }
func (s *Standard) PreloadDefaults() loads.Defaults { return s.preload }

// Friction is the default faying-surface friction coefficient for slip.
func (s *Standard) Friction() float64 { return s.friction }

// Label is the name and version as reported in results.
func (s *Standard) Label() string {
	if s.version == "" {
		return s.name
	}
	return s.name + " (" + s.version + ")"
}

// FittingModes lists the modes that take the fitting factor by default.
func (s *Standard) FittingModes() []failure.Mode {
	var out []failure.Mode
	for _, m := range failure.Modes {
		if s.fitting[m] {
			out = append(out, m)
		}
	}
	return out
}

const DefaultStandard = "NASA-STD-5020B"

// NASA-STD-5020B, Table 1 factors and Table 3 preload uncertainty.
var nasa5020B = &Standard{
	name:    DefaultStandard,
	version: "2021-09",
	factors: SafetyFactors{Ultimate: 1.4, Yield: 1.2, Separation: 1.2, Fitting: 1.15},
	fitting: modeSet(
		failure.ModeYield,
		failure.ModeUltimate,
		failure.ModeSeparation,
		failure.ModeThreadShearFastener,
		failure.ModeThreadShearNut,
		failure.ModeThreadShearInsertInternal,
		failure.ModeThreadShearInsertExternal,
		failure.ModeThreadShearParent,
		failure.ModeJointBearing,
		failure.ModeBoltBearing,
		failure.ModeShearTearOut,
		failure.ModeFastenerShear,
		failure.ModeCombined,
	),
	preload: loads.Defaults{
		TorqueLubricated: 0.25,
		TorqueDry:        0.35,
		TurnOfNut:        0.25,
		Elongation:       0.10,
		Ultrasonic:       0.10,
		IndicatingWasher: 0.15,
		Relaxation:       0.05,
		NutFactor:        0.2,
	},
	friction: 0.1,
}

func modeSet(ms ...failure.Mode) map[failure.Mode]bool {
	out := make(map[failure.Mode]bool, len(ms))
	for _, m := range ms {
		out[m] = true
	}
	return out
}

// Registry resolves standards by name. Registration happens at start-up;
// lookups are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	standards map[string]*Standard
}

func NewRegistry() *Registry {
	return &Registry{standards: map[string]*Standard{strings.ToUpper(DefaultStandard): nasa5020B}}
}

func (r *Registry) Register(s *Standard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := strings.ToUpper(s.name)
	if _, dup := r.standards[k]; dup {
		return calcerr.Newf(calcerr.CodeConfiguration, "standard %s already registered", s.name)
	}
	r.standards[k] = s
	return nil
}

// Lookup returns the named standard; an empty name selects the default.
func (r *Registry) Lookup(name string) (*Standard, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultStandard
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.standards[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return nil, calcerr.Newf(calcerr.CodeConfiguration, "unknown standard %q", name)
	}
	return s, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.standards))
	for _, s := range r.standards {
		out = append(out, s.name)
	}
	sort.Strings(out)
	return out
}

// Override is a per-request program override. Nil fields keep the
// standard values; a non-nil FittingModes replaces the fitting set.
type Override struct {
	Ultimate     *float64 `json:"ultimate,omitempty" yaml:"ultimate,omitempty"`
	Yield        *float64 `json:"yield,omitempty" yaml:"yield,omitempty"`
	Separation   *float64 `json:"separation,omitempty" yaml:"separation,omitempty"`
	Fitting      *float64 `json:"fitting,omitempty" yaml:"fitting,omitempty"`
	FittingModes []string `json:"fitting_modes,omitempty" yaml:"fitting_modes,omitempty"`
}

// Policy is a standard with overrides applied.
type Policy struct {
	standard *Standard
	factors  SafetyFactors
	fitting  map[failure.Mode]bool
}

func (s *Standard) Resolve(o *Override) (Policy, error) {
	p := Policy{standard: s, factors: s.factors, fitting: s.fitting}
	if o == nil {
		return p, nil
	}
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.factors.Ultimate, o.Ultimate)
	set(&p.factors.Yield, o.Yield)
	set(&p.factors.Separation, o.Separation)
	set(&p.factors.Fitting, o.Fitting)
	if err := p.factors.validate(); err != nil {
		return Policy{}, err
	}
	if o.FittingModes != nil {
		p.fitting = make(map[failure.Mode]bool, len(o.FittingModes))
		for _, name := range o.FittingModes {
			m, err := failure.ParseMode(name)
			if err != nil {
				return Policy{}, err
			}
			p.fitting[m] = true
		}
	}
	return p, nil
}

func (p Policy) Standard() *Standard    { return p.standard }
func (p Policy) Factors() SafetyFactors { return p.factors }

// Factor is the combined factor for a mode and whether it includes the
// fitting factor.
func (p Policy) Factor(m failure.Mode) (float64, bool) {
	f := p.factors.forRole(RoleOf(m))
	if p.fitting[m] {
		return f * p.factors.Fitting, true
	}
	return f, false
}

// standardDoc is the YAML form of a program standard. Factors and preload
// are decoded over a copy of the base standard, so absent keys inherit.
type standardDoc struct {
	Name         string         `yaml:"name"`
	Version      string         `yaml:"version"`
	Base         string         `yaml:"base"`
	Factors      SafetyFactors  `yaml:"factors"`
	FittingModes []string       `yaml:"fitting_modes"`
	Preload      loads.Defaults `yaml:"preload"`
	Friction     *float64       `yaml:"friction"`
}

// Load reads a program standard derived from a registered base standard.
func (r *Registry) Load(rd io.Reader) (*Standard, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(rd).Decode(&node); err != nil {
		return nil, calcerr.Wrap(err, calcerr.CodeConfiguration, "decode standard")
	}
	var head struct {
		Base string `yaml:"base"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, calcerr.Wrap(err, calcerr.CodeConfiguration, "decode standard")
	}
	base, err := r.Lookup(head.Base)
	if err != nil {
		return nil, err
	}
	doc := standardDoc{Factors: base.factors, Preload: base.preload}
	if err := node.Decode(&doc); err != nil {
		return nil, calcerr.Wrap(err, calcerr.CodeConfiguration, "decode standard")
	}
	if strings.TrimSpace(doc.Name) == "" {
		return nil, calcerr.New(calcerr.CodeConfiguration, "standard needs a name")
	}
	s := &Standard{
		name:     doc.Name,
		version:  doc.Version,
		factors:  doc.Factors,
		fitting:  base.fitting,
		preload:  doc.Preload,
		friction: base.friction,
	}
	if err := s.factors.validate(); err != nil {
		return nil, err
	}
	if err := s.preload.Validate(); err != nil {
		return nil, calcerr.Wrap(err, calcerr.CodeConfiguration, "standard "+s.name+" preload")
	}
	if doc.FittingModes != nil {
		s.fitting = map[failure.Mode]bool{}
		for _, name := range doc.FittingModes {
			m, err := failure.ParseMode(name)
			if err != nil {
				return nil, err
			}
			s.fitting[m] = true
		}
	}
	if doc.Friction != nil {
		if !(*doc.Friction > 0) {
			return nil, calcerr.New(calcerr.CodeConfiguration, "friction must be positive")
		}
		s.friction = *doc.Friction
	}
	if err := r.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Standard) String() string {
	return fmt.Sprintf("%s ultimate=%g yield=%g separation=%g fitting=%g",
		s.Label(), s.factors.Ultimate, s.factors.Yield, s.factors.Separation, s.factors.Fitting)
}
