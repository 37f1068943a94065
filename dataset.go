/*
 * dataset.go, part of goFFData.
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
	"log"

	v3 "github.com/rmera/goffdata/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Dataset is an ordered, resizable collection of Molecules: the unit of
//iteration, filtering, parametrization and persistence. It exclusively owns
//its Molecules. Filtering removes whole records from the membership list;
//it never rewrites a Molecule other than through the two filter algorithms.
//A Dataset spans one curation run and is not safe for concurrent mutation.
type Dataset struct {
	mols []*Molecule

	//Info makes the batch operations report running counts through the log
	//package.
	Info bool
}

//NewDataset returns an empty Dataset.
func NewDataset() *Dataset {
	return &Dataset{mols: make([]*Molecule, 0, 100)}
}

//Len returns the number of molecules in the dataset.
func (D *Dataset) Len() int {
	return len(D.mols)
}

//Mol returns the ith molecule. Panics if out of range.
func (D *Dataset) Mol(i int) *Molecule {
	return D.mols[i]
}

//Append adds a molecule at the end of the dataset. The only requirement is
//a non-nil record with at least one conformation.
func (D *Dataset) Append(mol *Molecule) error {
	if mol == nil || mol.NConfs() < 1 {
		return cError("Append", "Need a non-nil Molecule with at least one conformation")
	}
	D.mols = append(D.mols, mol)
	return nil
}

//compact keeps only the molecules marked in keep, in one sequential pass,
//and returns the number removed. The decisions are always collected before
//this runs, so no index is invalidated mid-iteration.
func (D *Dataset) compact(keep []bool) int {
	kept := D.mols[:0]
	for i, mol := range D.mols {
		if keep[i] {
			kept = append(kept, mol)
		}
	}
	removed := len(D.mols) - len(kept)
	for i := len(kept); i < len(D.mols); i++ {
		D.mols[i] = nil
	}
	D.mols = kept
	return removed
}

//FilterConfs applies Molecule.FilterConfs to every molecule with the given
//thresholds (kcal/mol and, optionally, kcal/mol/Å) and then drops, in place,
//the molecules left with fewer than MinConfs conformations. It returns the
//number of molecules removed. Threshold violations are the expected pruning
//mechanism, never an error.
func (D *Dataset) FilterConfs(maxEnergy float64, maxForce ...float64) int {
	keep := make([]bool, len(D.mols))
	for i, mol := range D.mols {
		keep[i] = mol.FilterConfs(maxEnergy, maxForce...)
	}
	removed := D.compact(keep)
	if D.Info {
		log.Printf("goFFData: conformation window filter kept %d molecules, removed %d", D.Len(), removed)
	}
	return removed
}

//FilterValidity drops, in place, the molecules whose forcefield label set
//is not at least as good as always predicting the mean, within the sigmaE
//and sigmaF tolerance factors (see Molecule.Valid). It returns the number
//removed. A missing label is an error; in that case the container is left
//untouched.
func (D *Dataset) FilterValidity(label string, sigmaE, sigmaF float64) (int, error) {
	keep := make([]bool, len(D.mols))
	for i, mol := range D.mols {
		ok, err := mol.Valid(label, sigmaE, sigmaF)
		if err != nil {
			return 0, errDecorate(err, "FilterValidity")
		}
		keep[i] = ok
	}
	removed := D.compact(keep)
	if D.Info {
		log.Printf("goFFData: validity filter on label %s kept %d molecules, removed %d", label, D.Len(), removed)
	}
	return removed, nil
}

//Parametrize scores every conformation of every molecule with the given
//Scorer and stores the results under the given label name, overwriting any
//previous set with that name (re-running is idempotent per label). If a
//ChargeProvider is supplied, its charges are attached to each molecule
//before scoring. Scorer failures are never skipped: they indicate a
//structural problem the caller must see, and silently dropping them would
//corrupt the validity statistics downstream. On error, molecules already
//processed keep their new label and the failing one is left untouched.
func (D *Dataset) Parametrize(s Scorer, label string, charges ...ChargeProvider) error {
	if s == nil || label == "" {
		return cError("Parametrize", "Need a non-nil Scorer and a non-empty label name")
	}
	var provider ChargeProvider
	if len(charges) > 0 {
		provider = charges[0]
	}
	for i, mol := range D.mols {
		if provider != nil {
			q, err := provider.Charges(mol)
			if err != nil {
				return errDecorate(err, "Parametrize")
			}
			if err := mol.SetCharges(q); err != nil {
				return errDecorate(err, "Parametrize")
			}
		}
		energies := make([]float64, mol.NConfs())
		forces := make([]*v3.Matrix, mol.NConfs())
		for c := 0; c < mol.NConfs(); c++ {
			e, f, err := s.Score(mol, mol.Coords(c))
			if err != nil {
				return cError("Parametrize", "Scorer failed on molecule %d, conformation %d: %v", i, c, err)
			}
			if f == nil || f.NVecs() != mol.Len() {
				return cError("Parametrize", "Scorer returned malformed forces for molecule %d, conformation %d", i, c)
			}
			energies[c] = e
			forces[c] = f
		}
		//Scorer energies carry an arbitrary absolute offset, so we store
		//them mean-centered, like the reference energies, and keep the
		//offset around.
		offset := stat.Mean(energies, nil)
		floats.AddConst(-offset, energies)
		mol.labels[label] = &Label{Offset: offset, Energies: energies, Forces: forces}
		if D.Info && (i+1)%100 == 0 {
			log.Printf("goFFData: parametrized %d/%d molecules", i+1, len(D.mols))
		}
	}
	if D.Info {
		log.Printf("goFFData: parametrized %d molecules with label %s", len(D.mols), label)
	}
	return nil
}

//Keys names the four per-group arrays of a bulk archival source.
type Keys struct {
	Elements string
	Energies string
	Coords   string
	Forces   string
}

//DefaultKeys returns the array names used by the usual quantum-chemistry
//archives.
func DefaultKeys() *Keys {
	return &Keys{
		Elements: "atomic_numbers",
		Energies: "dft_total_energy",
		Coords:   "conformations",
		Forces:   "dft_total_gradient",
	}
}

//FromSource ingests molecules from a bulk archival source, appending them
//to the dataset. keys names the per-group arrays (nil means DefaultKeys),
//and units declares the source's unit convention. nmax, if positive, is a
//soft cap: ingestion stops once the dataset holds more than nmax molecules.
//Malformed groups (missing keys, bad shapes) are counted and skipped when
//skipErrs is true; otherwise the first one aborts the call, with all groups
//read before it retained. The per-record isolation matters: archival
//quantum-chemistry datasets routinely contain a small fraction of malformed
//entries, and one bad record must not invalidate the whole load. It returns
//the number of failed groups.
func (D *Dataset) FromSource(src Source, keys *Keys, units *Units, nmax int, skipErrs bool) (int, error) {
	if src == nil || units == nil {
		return 0, cError("FromSource", "Need a non-nil Source and a non-nil Units preset")
	}
	if keys == nil {
		keys = DefaultKeys()
	}
	failed := 0
	stored := 0
	for _, name := range src.Names() {
		if nmax > 0 && D.Len() > nmax {
			break
		}
		mol, err := readGroup(src, name, keys, units)
		if err != nil {
			failed++
			if !skipErrs {
				return failed, errDecorate(err, "FromSource")
			}
			if D.Info {
				log.Printf("goFFData: skipping group %s: %v", name, err)
			}
			continue
		}
		D.mols = append(D.mols, mol)
		stored++
	}
	if D.Info {
		log.Printf("goFFData: ingested %d molecules, failed for %d", stored, failed)
	}
	return failed, nil
}

//readGroup builds one Molecule from one named group of a source, applying
//unit normalization. Any inconsistency is reported as an error for this
//record only.
func readGroup(src Source, name string, keys *Keys, units *Units) (*Molecule, error) {
	g, err := src.Group(name)
	if err != nil {
		return nil, errDecorate(err, "readGroup")
	}
	elements, err := g.Ints(keys.Elements)
	if err != nil {
		return nil, errDecorate(err, "readGroup")
	}
	natoms := len(elements)
	rawE, eshape, err := g.Floats(keys.Energies)
	if err != nil {
		return nil, errDecorate(err, "readGroup")
	}
	if len(eshape) != 1 || eshape[0] != len(rawE) {
		return nil, cError("readGroup", "Group %s: energy array is not one-dimensional", name)
	}
	nconfs := len(rawE)
	rawX, xshape, err := g.Floats(keys.Coords)
	if err != nil {
		return nil, errDecorate(err, "readGroup")
	}
	if len(xshape) != 3 || xshape[0] != nconfs || xshape[1] != natoms || xshape[2] != 3 {
		return nil, cError("readGroup", "Group %s: geometry array shape %v does not match %d conformations of %d atoms", name, xshape, nconfs, natoms)
	}
	rawF, fshape, err := g.Floats(keys.Forces)
	if err != nil {
		return nil, errDecorate(err, "readGroup")
	}
	if len(fshape) != 3 || fshape[0] != nconfs || fshape[1] != natoms || fshape[2] != 3 {
		return nil, cError("readGroup", "Group %s: force array shape %v does not match %d conformations of %d atoms", name, fshape, nconfs, natoms)
	}
	energies := units.Energies(rawE)
	xyz := units.Distances(rawX)
	grad := units.Forces(rawF)
	coords := make([]*v3.Matrix, nconfs)
	forces := make([]*v3.Matrix, nconfs)
	stride := natoms * 3
	for c := 0; c < nconfs; c++ {
		coords[c], err = v3.NewMatrix(xyz[c*stride : (c+1)*stride])
		if err != nil {
			return nil, errDecorate(err, "readGroup")
		}
		forces[c], err = v3.NewMatrix(grad[c*stride : (c+1)*stride])
		if err != nil {
			return nil, errDecorate(err, "readGroup")
		}
	}
	mol, err := NewMolecule(elements, coords, energies, forces)
	if err != nil {
		return nil, errDecorate(err, "readGroup")
	}
	return mol, nil
}
