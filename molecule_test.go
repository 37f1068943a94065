/*
 * molecule_test.go, part of goFFData.
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

//conf builds a 1-vector-per-atom matrix for the tests, panicking on bad
//input, which in a test is fine.
func conf(vals ...float64) *v3.Matrix {
	m, err := v3.NewMatrix(vals)
	if err != nil {
		panic(err.Error())
	}
	return m
}

//waterMol returns a 3-atom test molecule with the given reference energies.
//All forces are small, so only the energy window matters unless the test
//replaces them.
func waterMol(energies []float64) *Molecule {
	nconfs := len(energies)
	coords := make([]*v3.Matrix, nconfs)
	forces := make([]*v3.Matrix, nconfs)
	for i := 0; i < nconfs; i++ {
		d := 0.01 * float64(i)
		coords[i] = conf(0, 0, 0, 0.96+d, 0, 0, -0.24, 0.93+d, 0)
		forces[i] = conf(0.1, 0, 0, -0.1, 0, 0, 0, 0.1, 0)
	}
	M, err := NewMolecule([]int{8, 1, 1}, coords, energies, forces)
	if err != nil {
		panic(err.Error())
	}
	return M
}

func TestFilterConfsWindow(Te *testing.T) {
	M := waterMol([]float64{0, 10, 100})
	if !M.FilterConfs(60) {
		Te.Error("Molecule with 2 surviving conformations should be kept")
	}
	if M.NConfs() != 2 {
		Te.Errorf("Expected 2 conformations after the 60 kcal/mol window, got %d", M.NConfs())
	}
	//Only energy differences are physical, so we check the gap, not the values.
	e := M.Energies()
	if math.Abs((e[1]-e[0])-10) > 1e-10 {
		Te.Errorf("Surviving energy gap should be 10 kcal/mol, got %v", e[1]-e[0])
	}
	fmt.Println("Energies after the window filter:", e)
}

func TestFilterConfsDropsMolecule(Te *testing.T) {
	M := waterMol([]float64{0, 200})
	if M.FilterConfs(60) {
		Te.Error("Molecule left with a single conformation should be reported droppable")
	}
	if M.NConfs() != 1 {
		Te.Errorf("Expected 1 conformation left, got %d", M.NConfs())
	}
}

func TestFilterConfsForceBound(Te *testing.T) {
	M := waterMol([]float64{0, 1, 2})
	//Blow up the forces of the middle conformation only.
	M.forces[1] = conf(0, 0, -1500, 0, 0, 0, 0, 0, 0)
	//A label set before filtering must be pruned in lockstep.
	lab := &Label{
		Offset:   3,
		Energies: []float64{-1, 0, 1},
		Forces:   []*v3.Matrix{v3.Zeros(3), v3.Zeros(3), v3.Zeros(3)},
	}
	if err := M.SetLabel("ff", lab); err != nil {
		Te.Fatal(err)
	}
	if !M.FilterConfs(60, 1000) {
		Te.Error("Two conformations survive the force bound, the molecule should be kept")
	}
	if M.NConfs() != 2 {
		Te.Errorf("Expected 2 conformations after the force bound, got %d", M.NConfs())
	}
	got, _ := M.Label("ff")
	if len(got.Energies) != 2 || len(got.Forces) != 2 {
		Te.Errorf("Label arrays not pruned in lockstep: %d energies, %d force sets", len(got.Energies), len(got.Forces))
	}
	if got.Energies[0] != -1 || got.Energies[1] != 1 {
		Te.Errorf("Wrong label energies survived: %v", got.Energies)
	}
}

func TestValidExactLabel(Te *testing.T) {
	M := waterMol([]float64{-1, 0, 1})
	//A label that reproduces the reference exactly, up to an offset.
	lab := &Label{
		Offset:   100,
		Energies: M.Energies(),
		Forces:   []*v3.Matrix{M.Forces(0).Clone(), M.Forces(1).Clone(), M.Forces(2).Clone()},
	}
	if err := M.SetLabel("exact", lab); err != nil {
		Te.Fatal(err)
	}
	eres, ebase, err := M.EnergyRMS("exact")
	if err != nil {
		Te.Fatal(err)
	}
	if eres > 1e-12 {
		Te.Errorf("Exact label should have a zero energy residual, got %v", eres)
	}
	if ebase <= 0 {
		Te.Errorf("Non-constant reference energies should have a positive baseline, got %v", ebase)
	}
	ok, err := M.Valid("exact", 1, 1)
	if err != nil {
		Te.Error(err)
	}
	if !ok {
		Te.Error("An exact label must pass the validity test at sigma 1")
	}
}

func TestValidMonotonicInSigma(Te *testing.T) {
	//Reference forces with zero per-component mean across the two
	//conformations, so the anti-correlated label has a residual of exactly
	//twice the baseline for both energies and forces.
	coords := []*v3.Matrix{conf(0, 0, 0, 1, 0, 0), conf(0, 0, 0, 1.1, 0, 0)}
	forces := []*v3.Matrix{conf(1, 2, 3, -1, 0, 1), conf(-1, -2, -3, 1, 0, -1)}
	M, err := NewMolecule([]int{6, 8}, coords, []float64{-1, 1}, forces)
	if err != nil {
		Te.Fatal(err)
	}
	anti := &Label{
		Energies: []float64{1, -1},
		Forces:   []*v3.Matrix{M.Forces(0).Clone(), M.Forces(1).Clone()},
	}
	anti.Forces[0].ScaleBy(-1)
	anti.Forces[1].ScaleBy(-1)
	if err := M.SetLabel("anti", anti); err != nil {
		Te.Fatal(err)
	}
	eres, ebase, err := M.EnergyRMS("anti")
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(eres-2*ebase) > 1e-10 {
		Te.Errorf("Anti-correlated label: expected a residual of twice the baseline, got %v vs %v", eres, ebase)
	}
	ok, err := M.Valid("anti", 1, 1)
	if err != nil {
		Te.Error(err)
	}
	if ok {
		Te.Error("An anti-correlated label must fail the validity test at sigma 1")
	}
	ok, err = M.Valid("anti", 2.5, 2.5)
	if err != nil {
		Te.Error(err)
	}
	if !ok {
		Te.Error("Loosening sigma must eventually accept the label")
	}
}

func TestValidNeedsMinConfs(Te *testing.T) {
	M, err := NewMolecule([]int{1}, []*v3.Matrix{conf(0, 0, 0)}, []float64{1}, []*v3.Matrix{conf(0, 0, 0)})
	if err != nil {
		Te.Fatal(err)
	}
	lab := &Label{Energies: []float64{0}, Forces: []*v3.Matrix{v3.Zeros(1)}}
	if err := M.SetLabel("ff", lab); err != nil {
		Te.Fatal(err)
	}
	ok, err := M.Valid("ff", 1, 1)
	if err != nil {
		Te.Error("Too few conformations is not an error condition:", err)
	}
	if ok {
		Te.Error("A single-conformation molecule cannot pass the validity test")
	}
}

func TestNewMoleculeChecks(Te *testing.T) {
	_, err := NewMolecule([]int{1, 1}, []*v3.Matrix{conf(0, 0, 0)}, []float64{1}, []*v3.Matrix{conf(0, 0, 0)})
	if err == nil {
		Te.Error("Expected an error for a geometry without one row per atom")
	}
	_, err = NewMolecule([]int{1}, []*v3.Matrix{}, []float64{}, []*v3.Matrix{})
	if err == nil {
		Te.Error("Expected an error for a molecule without conformations")
	}
	fmt.Println("Malformed molecules rejected as they should")
}

func TestEnergiesAreCentered(Te *testing.T) {
	M := waterMol([]float64{10, 20, 30})
	e := M.Energies()
	var mean float64
	for _, v := range e {
		mean += v
	}
	mean /= float64(len(e))
	if math.Abs(mean) > 1e-10 {
		Te.Errorf("Reference energies should be stored mean-centered, got mean %v", mean)
	}
}
