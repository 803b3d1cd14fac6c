// Package registry implements the DataRegistry (spec.md Section 4.C1): it
// normalizes and indexes a model.DataBundle, resolving BuildVariations
// equivalence classes and exposing trimmed+uppercased name lookups. It
// never mutates the bundle it was built from.
package registry

import (
	"strings"

	"github.com/dominionforge/dominion-core/model"
)

// Registry is read-only after Build (spec.md Section 5: "DataRegistry is
// read-only post-load").
type Registry struct {
	objects       map[string]model.ObjectDef
	weapons       map[string]model.WeaponDef
	armors        map[string]model.ArmorDef
	upgrades      map[string]model.UpgradeDef
	sciences      map[string]model.ScienceDef
	locomotors    map[string]model.LocomotorDef
	commandButtons map[string]model.CommandButtonDef
	commandSets   map[string]model.CommandSetDef
	specialPowers map[string]model.SpecialPowerDef
	ocls          map[string]model.ObjectCreationList

	// buildVariation maps every name in a BuildVariations group (plus the
	// canonical object's own name) to the group's canonical (first-declared)
	// name, used for MaxSimultaneous/Prerequisite/QuantityModifier equivalence.
	buildVariation map[string]string
}

// Normalize trims and uppercases a name exactly as spec.md Section 4.C1
// requires for every lookup key.
func Normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Build indexes a DataBundle. Unresolved references are not an error here —
// they surface downstream as resolved=false on the spawned entity (spec.md
// Section 4.C1 Failure semantics).
func Build(bundle model.DataBundle) *Registry {
	r := &Registry{
		objects:        make(map[string]model.ObjectDef, len(bundle.Objects)),
		weapons:        make(map[string]model.WeaponDef, len(bundle.Weapons)),
		armors:         make(map[string]model.ArmorDef, len(bundle.Armors)),
		upgrades:       make(map[string]model.UpgradeDef, len(bundle.Upgrades)),
		sciences:       make(map[string]model.ScienceDef, len(bundle.Sciences)),
		locomotors:     make(map[string]model.LocomotorDef, len(bundle.Locomotors)),
		commandButtons: make(map[string]model.CommandButtonDef, len(bundle.CommandButton)),
		commandSets:    make(map[string]model.CommandSetDef, len(bundle.CommandSets)),
		specialPowers:  make(map[string]model.SpecialPowerDef, len(bundle.SpecialPowers)),
		ocls:           make(map[string]model.ObjectCreationList, len(bundle.OCLs)),
		buildVariation: make(map[string]string),
	}

	for _, o := range bundle.Objects {
		r.objects[Normalize(o.Name)] = o
	}
	for _, w := range bundle.Weapons {
		r.weapons[Normalize(w.Name)] = w
	}
	for _, a := range bundle.Armors {
		r.armors[Normalize(a.Name)] = a
	}
	for _, u := range bundle.Upgrades {
		r.upgrades[Normalize(u.Name)] = u
	}
	for _, s := range bundle.Sciences {
		r.sciences[Normalize(s.Name)] = s
	}
	for _, l := range bundle.Locomotors {
		r.locomotors[Normalize(l.Name)] = l
	}
	for _, c := range bundle.CommandButton {
		r.commandButtons[Normalize(c.Name)] = c
	}
	for _, c := range bundle.CommandSets {
		r.commandSets[Normalize(c.Name)] = c
	}
	for _, sp := range bundle.SpecialPowers {
		r.specialPowers[Normalize(sp.Name)] = sp
	}
	for _, ocl := range bundle.OCLs {
		r.ocls[Normalize(ocl.Name)] = ocl
	}

	for _, o := range bundle.Objects {
		canonical := Normalize(o.Name)
		if existing, ok := r.buildVariation[canonical]; ok {
			canonical = existing
		}
		r.buildVariation[canonical] = canonical
		for _, v := range o.BuildVariations {
			r.buildVariation[Normalize(v)] = canonical
		}
	}

	return r
}

func (r *Registry) ObjectDef(name string) (model.ObjectDef, bool) {
	d, ok := r.objects[Normalize(name)]
	return d, ok
}

func (r *Registry) WeaponDef(name string) (model.WeaponDef, bool) {
	d, ok := r.weapons[Normalize(name)]
	return d, ok
}

func (r *Registry) ArmorDef(name string) (model.ArmorDef, bool) {
	d, ok := r.armors[Normalize(name)]
	return d, ok
}

func (r *Registry) UpgradeDef(name string) (model.UpgradeDef, bool) {
	d, ok := r.upgrades[Normalize(name)]
	return d, ok
}

func (r *Registry) ScienceDef(name string) (model.ScienceDef, bool) {
	d, ok := r.sciences[Normalize(name)]
	return d, ok
}

func (r *Registry) LocomotorDef(name string) (model.LocomotorDef, bool) {
	d, ok := r.locomotors[Normalize(name)]
	return d, ok
}

func (r *Registry) CommandButton(name string) (model.CommandButtonDef, bool) {
	d, ok := r.commandButtons[Normalize(name)]
	return d, ok
}

func (r *Registry) CommandSet(name string) (model.CommandSetDef, bool) {
	d, ok := r.commandSets[Normalize(name)]
	return d, ok
}

func (r *Registry) SpecialPowerDef(name string) (model.SpecialPowerDef, bool) {
	d, ok := r.specialPowers[Normalize(name)]
	return d, ok
}

func (r *Registry) ObjectCreationList(name string) (model.ObjectCreationList, bool) {
	d, ok := r.ocls[Normalize(name)]
	return d, ok
}

// BuildVariationClass returns the canonical name for MaxSimultaneous/
// Prerequisite/QuantityModifier equivalence purposes (spec.md Section
// 4.C1). Names outside any BuildVariations group are their own class.
func (r *Registry) BuildVariationClass(name string) string {
	n := Normalize(name)
	if canonical, ok := r.buildVariation[n]; ok {
		return canonical
	}
	return n
}

// IsScienceGrantable reports whether a science may be granted directly
// (GrantScienceUpgrade module target).
func (r *Registry) IsScienceGrantable(name string) bool {
	s, ok := r.ScienceDef(name)
	return ok && s.IsGrantable
}

func (r *Registry) ScienceCost(name string) int {
	s, ok := r.ScienceDef(name)
	if !ok {
		return 0
	}
	return s.PurchasePointCost
}

func (r *Registry) SciencePrerequisites(name string) []string {
	s, ok := r.ScienceDef(name)
	if !ok {
		return nil
	}
	return s.PrerequisiteSciences
}

// CommandSetExposes reports whether a CommandSet contains a button gating
// the given object/upgrade/special-power name (spec.md Section 4.C4
// "Command-set gating").
func (r *Registry) CommandSetExposes(commandSetName, kind, name string) bool {
	cs, ok := r.CommandSet(commandSetName)
	if !ok {
		return false
	}
	n := Normalize(name)
	for _, buttonName := range cs.Slots {
		btn, ok := r.CommandButton(buttonName)
		if !ok {
			continue
		}
		switch kind {
		case "object":
			if Normalize(btn.Object) == n {
				return true
			}
		case "upgrade":
			if Normalize(btn.Upgrade) == n {
				return true
			}
		case "specialPower":
			if Normalize(btn.SpecialPower) == n {
				return true
			}
		}
	}
	return false
}
