// Package failure evaluates the failure modes of a preloaded threaded joint.
// Each evaluator returns a capability and an unfactored requirement; safety
// and fitting factors are applied by the caller.
package failure

import (
	"strings"

	"Fastener/internal/calc/calcerr"
	"Fastener/internal/calc/loads"
)

type Mode string

const (
	ModeYield                     Mode = "yield"
	ModeUltimate                  Mode = "ultimate"
	ModeSeparation                Mode = "separation"
	ModeThreadShearFastener       Mode = "thread_shear_fastener"
	ModeThreadShearNut            Mode = "thread_shear_nut"
	ModeThreadShearInsertInternal Mode = "thread_shear_insert_internal"
	ModeThreadShearInsertExternal Mode = "thread_shear_insert_external"
	ModeThreadShearParent         Mode = "thread_shear_parent_internal"
	ModeJointBearing              Mode = "joint_bearing"
	ModeBoltBearing               Mode = "bolt_bearing"
	ModeShearTearOut              Mode = "shear_tear_out"
	ModeJointSlip                 Mode = "joint_slip"
	ModeFastenerShear             Mode = "fastener_shear"
	ModeCombined                  Mode = "combined_tension_shear"
)

// Modes lists every mode in evaluation order.
var Modes = []Mode{
	ModeYield,
	ModeUltimate,
	ModeSeparation,
	ModeThreadShearFastener,
	ModeThreadShearNut,
	ModeThreadShearInsertInternal,
	ModeThreadShearInsertExternal,
	ModeThreadShearParent,
	ModeJointBearing,
	ModeBoltBearing,
	ModeShearTearOut,
	ModeJointSlip,
	ModeFastenerShear,
	ModeCombined,
}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", calcerr.Newf(calcerr.CodeConfiguration, "unknown failure mode %q", s)
}

// Bound is the preload each mode is combined with.
func (m Mode) Bound(separationCritical bool) loads.Bound {
	switch m {
	case ModeYield, ModeUltimate, ModeThreadShearFastener, ModeThreadShearNut,
		ModeThreadShearInsertInternal, ModeThreadShearInsertExternal, ModeThreadShearParent,
		ModeJointBearing, ModeCombined:
		return loads.BoundMax
	case ModeSeparation:
		if separationCritical {
			return loads.BoundMin
		}
		return loads.BoundMinStatistical
	case ModeJointSlip:
		return loads.BoundMinStatistical
	}
	return loads.BoundNone
}

type Configuration string

const (
	// ConfigNut is a through bolt with a nut.
	ConfigNut Configuration = "nut"
	// ConfigTapped threads the fastener into the last clamped part.
	ConfigTapped Configuration = "tapped"
	// ConfigInsert threads the fastener into a helical-coil insert in the
	// last clamped part.
	ConfigInsert Configuration = "insert"
)

func ParseConfiguration(s string) (Configuration, error) {
	switch c := Configuration(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return ConfigNut, nil
	case ConfigNut, ConfigTapped, ConfigInsert:
		return c, nil
	}
	return "", calcerr.Newf(calcerr.CodeMalformedLoadCase, "unknown joint configuration %q", s)
}

// threadShearModes are the thread interfaces present in a configuration.
func threadShearModes(c Configuration) []Mode {
	switch c {
	case ConfigTapped:
		return []Mode{ModeThreadShearFastener, ModeThreadShearParent}
	case ConfigInsert:
		return []Mode{ModeThreadShearFastener, ModeThreadShearInsertInternal, ModeThreadShearInsertExternal, ModeThreadShearParent}
	}
	return []Mode{ModeThreadShearFastener, ModeThreadShearNut}
}
