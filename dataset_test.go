/*
 * dataset_test.go, part of goFFData.
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
	"fmt"
	"math"
	"testing"

	v3 "github.com/rmera/goffdata/v3"
)

//sumScorer is a deterministic stand-in for a forcefield: the energy is the
//sum of x coordinates plus a constant offset, the forces are the negated
//geometry. Pure in the coordinates, so re-scoring gives the same numbers.
type sumScorer struct {
	offset float64
}

func (s *sumScorer) Score(top Atomer, coords *v3.Matrix) (float64, *v3.Matrix, error) {
	var e float64
	for i := 0; i < top.Len(); i++ {
		e += coords.At(i, 0)
	}
	f := coords.Clone()
	f.ScaleBy(-1)
	return e + s.offset, f, nil
}

//failScorer fails on every call.
type failScorer struct{}

func (s *failScorer) Score(top Atomer, coords *v3.Matrix) (float64, *v3.Matrix, error) {
	return 0, nil, fmt.Errorf("no parameters for this thing")
}

//constCharges assigns the same partial charge to every atom.
type constCharges struct {
	q float64
}

func (c *constCharges) Charges(top Atomer) ([]float64, error) {
	q := make([]float64, top.Len())
	for i := range q {
		q[i] = c.q
	}
	return q, nil
}

func testDataset(energySets ...[]float64) *Dataset {
	D := NewDataset()
	for _, e := range energySets {
		if err := D.Append(waterMol(e)); err != nil {
			panic(err.Error())
		}
	}
	return D
}

func TestDatasetFilterConfs(Te *testing.T) {
	D := testDataset(
		[]float64{0, 10, 100}, //loses one conformation
		[]float64{0, 200},     //dropped altogether
		[]float64{0, 5, 10},   //untouched
	)
	removed := D.FilterConfs(60)
	if removed != 1 {
		Te.Errorf("Expected 1 molecule removed, got %d", removed)
	}
	if D.Len() != 2 {
		Te.Errorf("Expected 2 molecules left, got %d", D.Len())
	}
	if D.Mol(0).NConfs() != 2 || D.Mol(1).NConfs() != 3 {
		Te.Errorf("Wrong surviving conformation counts: %d and %d", D.Mol(0).NConfs(), D.Mol(1).NConfs())
	}
}

func TestParametrize(Te *testing.T) {
	D := testDataset([]float64{-1, 0, 1}, []float64{-2, 0, 2})
	s := &sumScorer{offset: 7}
	if err := D.Parametrize(s, "ff", &constCharges{q: 0.1}); err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < D.Len(); i++ {
		mol := D.Mol(i)
		lab, ok := mol.Label("ff")
		if !ok {
			Te.Fatalf("Molecule %d has no label after Parametrize", i)
		}
		if len(lab.Energies) != mol.NConfs() || len(lab.Forces) != mol.NConfs() {
			Te.Errorf("Molecule %d: label arrays do not match the conformations", i)
		}
		var mean float64
		for _, e := range lab.Energies {
			mean += e
		}
		mean /= float64(len(lab.Energies))
		if math.Abs(mean) > 1e-10 {
			Te.Errorf("Molecule %d: label energies should be mean-centered, got mean %v", i, mean)
		}
		q := mol.Charges()
		if q == nil || q[0] != 0.1 {
			Te.Errorf("Molecule %d: charges not attached by the provider", i)
		}
	}
	//Re-running with the same Scorer and label name must leave everything
	//unchanged.
	before, _ := D.Mol(0).Label("ff")
	beforeE := make([]float64, len(before.Energies))
	copy(beforeE, before.Energies)
	beforeOff := before.Offset
	if err := D.Parametrize(s, "ff"); err != nil {
		Te.Fatal(err)
	}
	after, _ := D.Mol(0).Label("ff")
	if after.Offset != beforeOff {
		Te.Errorf("Offset drifted on re-parametrization: %v vs %v", after.Offset, beforeOff)
	}
	for i, e := range after.Energies {
		if e != beforeE[i] {
			Te.Errorf("Label energy %d drifted on re-parametrization: %v vs %v", i, e, beforeE[i])
		}
	}
	fmt.Println("Parametrization is idempotent per label")
}

func TestParametrizeFailure(Te *testing.T) {
	D := testDataset([]float64{-1, 0, 1})
	if err := D.Parametrize(&failScorer{}, "bad"); err == nil {
		Te.Error("A failing Scorer must surface as an error")
	}
	if _, ok := D.Mol(0).Label("bad"); ok {
		Te.Error("The failing molecule must not keep a partial label")
	}
}

func TestFilterValidity(Te *testing.T) {
	D := testDataset([]float64{-1, 0, 1}, []float64{-2, 0, 2}, []float64{-3, 0, 3})
	//Exact labels for molecules 0 and 2, an anti-correlated one for 1.
	for i := 0; i < D.Len(); i++ {
		mol := D.Mol(i)
		e := mol.Energies()
		if i == 1 {
			for j := range e {
				e[j] = -e[j]
			}
		}
		forces := make([]*v3.Matrix, mol.NConfs())
		for c := range forces {
			forces[c] = mol.Forces(c).Clone()
		}
		if err := mol.SetLabel("ff", &Label{Energies: e, Forces: forces}); err != nil {
			Te.Fatal(err)
		}
	}
	removed, err := D.FilterValidity("ff", 1, 1)
	if err != nil {
		Te.Fatal(err)
	}
	if removed != 1 || D.Len() != 2 {
		Te.Errorf("Expected to remove 1 molecule and keep 2, removed %d and kept %d", removed, D.Len())
	}
	//A missing label is an error and must leave the dataset untouched.
	if _, err := D.FilterValidity("nolabel", 1, 1); err == nil {
		Te.Error("Expected an error for a missing label")
	}
	if D.Len() != 2 {
		Te.Errorf("The dataset changed on a failed filter: %d molecules", D.Len())
	}
}

//memSourceFor builds an in-memory source with one group per energy set,
//named in order, all with the same 2-atom structure.
func memSourceFor(energySets ...[]float64) MemSource {
	keys := DefaultKeys()
	src := make(MemSource)
	for i, energies := range energySets {
		nconfs := len(energies)
		xyz := make([]float64, 0, nconfs*6)
		grad := make([]float64, 0, nconfs*6)
		for c := 0; c < nconfs; c++ {
			xyz = append(xyz, 0, 0, 0, 1+0.1*float64(c), 0, 0)
			grad = append(grad, 0.5, 0, 0, -0.5, 0, 0)
		}
		e := make([]float64, nconfs)
		copy(e, energies)
		src[fmt.Sprintf("group%02d", i)] = &MemGroup{
			IntArrays: map[string][]int{keys.Elements: {6, 8}},
			FloatArrays: map[string]*FloatArray{
				keys.Energies: {Data: e, Shape: []int{nconfs}},
				keys.Coords:   {Data: xyz, Shape: []int{nconfs, 2, 3}},
				keys.Forces:   {Data: grad, Shape: []int{nconfs, 2, 3}},
			},
		}
	}
	return src
}

func TestFromSource(Te *testing.T) {
	src := memSourceFor([]float64{-1, 1}, []float64{-2, 2}, []float64{-3, 3})
	//Corrupt the middle group with a wrong force shape.
	keys := DefaultKeys()
	src["group01"].FloatArrays[keys.Forces].Shape = []int{2, 3, 2}

	D := NewDataset()
	failed, err := D.FromSource(src, nil, CanonicalUnits(), 0, true)
	if err != nil {
		Te.Fatal(err)
	}
	if failed != 1 {
		Te.Errorf("Expected 1 failed group, got %d", failed)
	}
	if D.Len() != 2 {
		Te.Errorf("Expected 2 molecules ingested, got %d", D.Len())
	}
	//Without skipping, the bad group aborts the load but the groups read
	//before it are retained.
	D2 := NewDataset()
	failed, err = D2.FromSource(src, nil, CanonicalUnits(), 0, false)
	if err == nil {
		Te.Error("Expected an error for the malformed group")
	}
	if failed != 1 {
		Te.Errorf("Expected 1 failed group, got %d", failed)
	}
	if D2.Len() != 1 {
		Te.Errorf("Expected the 1 group before the failure retained, got %d", D2.Len())
	}
}

func TestFromSourceSoftCap(Te *testing.T) {
	src := memSourceFor([]float64{-1, 1}, []float64{-2, 2}, []float64{-3, 3})
	D := NewDataset()
	if _, err := D.FromSource(src, nil, CanonicalUnits(), 1, false); err != nil {
		Te.Fatal(err)
	}
	//The cap is advisory: checked before each group, so it can be exceeded
	//by the group that trips it.
	if D.Len() != 2 {
		Te.Errorf("Expected the soft cap to stop the load at 2 molecules, got %d", D.Len())
	}
}

func TestFromSourceConversion(Te *testing.T) {
	src := memSourceFor([]float64{-1, 1})
	D := NewDataset()
	if _, err := D.FromSource(src, nil, QCArchiveUnits(), 0, false); err != nil {
		Te.Fatal(err)
	}
	mol := D.Mol(0)
	e := mol.Energies()
	//Energies were ±1 hartree around their mean.
	if math.Abs(e[1]-e[0]-2*H2Kcal) > 1e-8 {
		Te.Errorf("Hartree conversion off: gap %v, expected %v", e[1]-e[0], 2*H2Kcal)
	}
	//The second atom sat at 1 bohr on x in the first conformation.
	if math.Abs(mol.Coords(0).At(1, 0)-Bohr2A) > 1e-12 {
		Te.Errorf("Bohr conversion off: %v, expected %v", mol.Coords(0).At(1, 0), Bohr2A)
	}
	if math.Abs(mol.Forces(0).At(0, 0)-0.5*H2Kcal*A2Bohr) > 1e-8 {
		Te.Errorf("Force conversion off: %v, expected %v", mol.Forces(0).At(0, 0), 0.5*H2Kcal*A2Bohr)
	}
}

func TestUnits(Te *testing.T) {
	if _, err := NewUnits(1, 0, 1); err == nil {
		Te.Error("Expected an error for a non-positive unit factor")
	}
	U := QCArchiveUnits()
	raw := []float64{1}
	if U.Energies(raw)[0] != H2Kcal {
		Te.Errorf("Wrong energy factor: %v", U.Energies(raw)[0])
	}
	if raw[0] != 1 {
		Te.Error("Conversion must not modify the input slice")
	}
}
