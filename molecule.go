/*
 * molecule.go, part of goFFData.
 *
 *
 * Copyright 2023 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 * goFFData is currently developed at the Universidad de Santiago de Chile
 * (USACH)
 *
 */

package ffdata

import (
	"math"
	"sort"

	v3 "github.com/rmera/goffdata/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//MinConfs is the smallest number of conformations a Molecule may keep after
//filtering. Below it, variance-based consistency checks are meaningless, so
//the molecule is dropped from its Dataset rather than kept around empty.
const MinConfs = 2

//Label is one named set of forcefield-computed values for a molecule: the
//energy offset removed when the label was stored, the per-conformation
//energies (mean-centered, kcal/mol) and the per-conformation, per-atom
//forces (kcal/mol/Å).
type Label struct {
	Offset   float64
	Energies []float64
	Forces   []*v3.Matrix
}

//Molecule is one chemical structure together with an ordered set of
//conformations. Each conformation carries a geometry, a reference energy
//and reference per-atom forces; forcefield-computed counterparts are kept
//in named Labels. All conformations share the same atom count and element
//ordering. Reference energies are stored relative to their own per-molecule
//mean: absolute energy scales are not comparable across molecules, only
//energy differences within one molecule are physically meaningful.
type Molecule struct {
	elements []int
	charges  []float64
	coords   []*v3.Matrix
	energies []float64
	forces   []*v3.Matrix
	labels   map[string]*Label
}

//NewMolecule builds a Molecule from atomic numbers, per-conformation
//geometries, reference energies (any offset; the per-molecule mean is
//removed here) and reference forces, all in canonical units. It takes
//ownership of the given slices. At least one conformation is required, and
//every geometry and force matrix must have one row per element.
func NewMolecule(elements []int, coords []*v3.Matrix, energies []float64, forces []*v3.Matrix) (*Molecule, error) {
	if len(elements) < 1 {
		return nil, cError("NewMolecule", "Empty element list")
	}
	nconfs := len(coords)
	if nconfs < 1 {
		return nil, cError("NewMolecule", "A Molecule needs at least one conformation")
	}
	if len(energies) != nconfs || len(forces) != nconfs {
		return nil, cError("NewMolecule", "Mismatched conformation counts: %d geometries, %d energies, %d force sets", nconfs, len(energies), len(forces))
	}
	for i := 0; i < nconfs; i++ {
		if coords[i] == nil || forces[i] == nil {
			return nil, cError("NewMolecule", "Nil geometry or force matrix for conformation %d", i)
		}
		if coords[i].NVecs() != len(elements) || forces[i].NVecs() != len(elements) {
			return nil, cError("NewMolecule", "Conformation %d does not have one row per atom (%d atoms)", i, len(elements))
		}
	}
	//The centering is idempotent, so molecules rebuilt from persisted
	//(already centered) data do not drift.
	floats.AddConst(-stat.Mean(energies, nil), energies)
	M := &Molecule{
		elements: elements,
		coords:   coords,
		energies: energies,
		forces:   forces,
		labels:   make(map[string]*Label),
	}
	return M, nil
}

//Len returns the number of atoms.
func (M *Molecule) Len() int {
	return len(M.elements)
}

//NConfs returns the number of conformations currently stored.
func (M *Molecule) NConfs() int {
	return len(M.coords)
}

//AtomicNumber returns the atomic number of the ith atom. Panics if out
//of range.
func (M *Molecule) AtomicNumber(i int) int {
	return M.elements[i]
}

//Elements returns a copy of the atomic-number list.
func (M *Molecule) Elements() []int {
	ret := make([]int, len(M.elements))
	copy(ret, M.elements)
	return ret
}

//Charges returns the per-atom partial charges, or nil if none have been
//set. The returned slice is the internal one; callers must not modify it.
func (M *Molecule) Charges() []float64 {
	return M.charges
}

//SetCharges attaches per-atom partial charges to the molecule.
func (M *Molecule) SetCharges(q []float64) error {
	if len(q) != len(M.elements) {
		return cError("SetCharges", "Got %d charges for %d atoms", len(q), len(M.elements))
	}
	M.charges = q
	return nil
}

//Coords returns the geometry of the ith conformation. Panics if out of
//range.
func (M *Molecule) Coords(i int) *v3.Matrix {
	return M.coords[i]
}

//Forces returns the reference forces of the ith conformation. Panics if
//out of range.
func (M *Molecule) Forces(i int) *v3.Matrix {
	return M.forces[i]
}

//Energies returns a copy of the reference energy array.
func (M *Molecule) Energies() []float64 {
	ret := make([]float64, len(M.energies))
	copy(ret, M.energies)
	return ret
}

//Label returns the named forcefield label set, if present.
func (M *Molecule) Label(name string) (*Label, bool) {
	lab, ok := M.labels[name]
	return lab, ok
}

//LabelNames returns the names of the stored label sets, sorted.
func (M *Molecule) LabelNames() []string {
	names := make([]string, 0, len(M.labels))
	for name := range M.labels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

//SetLabel stores a forcefield label set under the given name, overwriting
//any previous set with that name. The arrays must match the molecule's
//current conformations.
func (M *Molecule) SetLabel(name string, lab *Label) error {
	if name == "" || lab == nil {
		return cError("SetLabel", "Need a non-empty name and a non-nil label")
	}
	if len(lab.Energies) != M.NConfs() || len(lab.Forces) != M.NConfs() {
		return cError("SetLabel", "Label %s does not match the %d conformations", name, M.NConfs())
	}
	for i, f := range lab.Forces {
		if f == nil || f.NVecs() != M.Len() {
			return cError("SetLabel", "Label %s, conformation %d: forces do not have one row per atom", name, i)
		}
	}
	M.labels[name] = lab
	return nil
}

//FilterConfs prunes the conformations whose reference energy lies more than
//maxEnergy (kcal/mol) above the molecule's own minimum, and, if a positive
//maxForce (kcal/mol/Å) is given, those whose largest absolute force
//component exceeds it. Geometries, energies, forces and every stored label
//are pruned in lockstep. It returns false if fewer than MinConfs
//conformations remain, meaning the molecule should be dropped from its
//Dataset. Labels computed before the call stay valid for the surviving
//conformations, but are not recomputed: re-parametrize if thresholds are
//tightened after parametrization.
func (M *Molecule) FilterConfs(maxEnergy float64, maxForce ...float64) bool {
	if M.NConfs() == 0 {
		return false
	}
	fmax := math.Inf(1)
	if len(maxForce) > 0 && maxForce[0] > 0 {
		fmax = maxForce[0]
	}
	minE := floats.Min(M.energies)
	keep := make([]bool, M.NConfs())
	n := 0
	for i := range M.coords {
		if M.energies[i]-minE > maxEnergy {
			continue
		}
		if M.forces[i].MaxAbs() > fmax {
			continue
		}
		keep[i] = true
		n++
	}
	if n != M.NConfs() {
		M.compact(keep, n)
	}
	return M.NConfs() >= MinConfs
}

//compact keeps only the conformations marked in keep, across all
//per-conformation arrays.
func (M *Molecule) compact(keep []bool, n int) {
	M.coords = compactMats(M.coords, keep, n)
	M.forces = compactMats(M.forces, keep, n)
	M.energies = compactFloats(M.energies, keep, n)
	for _, lab := range M.labels {
		lab.Forces = compactMats(lab.Forces, keep, n)
		lab.Energies = compactFloats(lab.Energies, keep, n)
	}
}

func compactMats(in []*v3.Matrix, keep []bool, n int) []*v3.Matrix {
	out := make([]*v3.Matrix, 0, n)
	for i, v := range in {
		if keep[i] {
			out = append(out, v)
		}
	}
	return out
}

func compactFloats(in []float64, keep []bool, n int) []float64 {
	out := make([]float64, 0, n)
	for i, v := range in {
		if keep[i] {
			out = append(out, v)
		}
	}
	return out
}

//EnergyRMS returns, for the named label, the RMS residual between computed
//and reference energies, and the RMS residual between the reference
//energies and their own mean (the "always guess the mean" baseline). Both
//sides are taken relative to their respective means, so arbitrary absolute
//offsets in either label never enter the statistics.
func (M *Molecule) EnergyRMS(label string) (residual, baseline float64, err error) {
	lab, ok := M.labels[label]
	if !ok {
		return 0, 0, cError("EnergyRMS", "Molecule has no label %s", label)
	}
	n := M.NConfs()
	refmean := stat.Mean(M.energies, nil)
	labmean := stat.Mean(lab.Energies, nil)
	var ressum, basesum float64
	for i, e := range M.energies {
		d := (lab.Energies[i] - labmean) - (e - refmean)
		ressum += d * d
		b := e - refmean
		basesum += b * b
	}
	return math.Sqrt(ressum / float64(n)), math.Sqrt(basesum / float64(n)), nil
}

//ForceRMS returns, for the named label, the RMS residual between computed
//and reference force components, and the baseline RMS of the reference
//components around their per-atom, per-component mean across conformations.
func (M *Molecule) ForceRMS(label string) (residual, baseline float64, err error) {
	lab, ok := M.labels[label]
	if !ok {
		return 0, 0, cError("ForceRMS", "Molecule has no label %s", label)
	}
	n := M.NConfs()
	natoms := M.Len()
	mean := make([]float64, natoms*3)
	for _, f := range M.forces {
		for a := 0; a < natoms; a++ {
			for k := 0; k < 3; k++ {
				mean[a*3+k] += f.At(a, k)
			}
		}
	}
	floats.Scale(1/float64(n), mean)
	var ressum, basesum float64
	for c := 0; c < n; c++ {
		for a := 0; a < natoms; a++ {
			for k := 0; k < 3; k++ {
				ref := M.forces[c].At(a, k)
				d := lab.Forces[c].At(a, k) - ref
				ressum += d * d
				b := ref - mean[a*3+k]
				basesum += b * b
			}
		}
	}
	tot := float64(n * natoms * 3)
	return math.Sqrt(ressum / tot), math.Sqrt(basesum / tot), nil
}

//Valid checks whether the named forcefield label set is statistically at
//least as good as always predicting the mean, within the given tolerance
//factors: the energy (force) RMS residual must not exceed sigmaE (sigmaF)
//times the corresponding baseline RMS. sigma == 1 is the "no worse than
//guessing the mean" boundary. The test is per molecule and per label, never
//a dataset-global statistic: baseline variance differs wildly between rigid
//and floppy structures. Molecules with fewer than MinConfs conformations
//cannot support the test and are reported invalid.
func (M *Molecule) Valid(label string, sigmaE, sigmaF float64) (bool, error) {
	if M.NConfs() < MinConfs {
		return false, nil
	}
	eres, ebase, err := M.EnergyRMS(label)
	if err != nil {
		return false, errDecorate(err, "Valid")
	}
	fres, fbase, err := M.ForceRMS(label)
	if err != nil {
		return false, errDecorate(err, "Valid")
	}
	return eres <= sigmaE*ebase && fres <= sigmaF*fbase, nil
}
