/*
 * units.go, part of goFFData.
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

import "gonum.org/v1/gonum/floats"

//This provides useful conversion factors and other constants.
//The canonical unit system of the library is Å for distances, kcal/mol for
//energies and kcal/mol/Å for forces. Everything is normalized into it at
//ingestion.

//Conversions
const (
	H2Kcal  = 627.509 //Hartree 2 Kcal/mol. A Hartree is an energy per particle, so this factor already folds in Avogadro's number.
	Kcal2H  = 1 / 627.509
	KJ2Kcal = 1 / 4.184
	Kcal2KJ = 4.184
	A2Bohr  = 1.889725989
	Bohr2A  = 1 / 1.889725989
)

//Others
const (
	NAvogadro = 6.02214076e23
)

//Units holds the multiplicative factors taking raw distance, energy and
//force values from a source's unit convention to the canonical system.
//A Units value is pure data: conversions never rely on global state.
type Units struct {
	Distance float64
	Energy   float64
	Force    float64
}

//NewUnits returns a Units with the given source-to-canonical factors.
//Non-positive factors indicate malformed unit metadata, an ingestion-grade
//error.
func NewUnits(distance, energy, force float64) (*Units, error) {
	if distance <= 0 || energy <= 0 || force <= 0 {
		return nil, cError("NewUnits", "Unit factors must be positive, got %v %v %v", distance, energy, force)
	}
	return &Units{Distance: distance, Energy: energy, Force: force}, nil
}

//CanonicalUnits returns the identity preset: the source already uses
//Å, kcal/mol and kcal/mol/Å.
func CanonicalUnits() *Units {
	return &Units{Distance: 1, Energy: 1, Force: 1}
}

//QCArchiveUnits returns the quantum-chemistry archive preset: distances in
//bohr, energies in hartree per particle, forces in hartree per particle
//per bohr.
func QCArchiveUnits() *Units {
	return &Units{Distance: Bohr2A, Energy: H2Kcal, Force: H2Kcal * A2Bohr}
}

//Distances returns a fresh slice with raw converted to Å.
func (U *Units) Distances(raw []float64) []float64 {
	return scaled(U.Distance, raw)
}

//Energies returns a fresh slice with raw converted to kcal/mol.
func (U *Units) Energies(raw []float64) []float64 {
	return scaled(U.Energy, raw)
}

//Forces returns a fresh slice with raw converted to kcal/mol/Å.
func (U *Units) Forces(raw []float64) []float64 {
	return scaled(U.Force, raw)
}

func scaled(factor float64, raw []float64) []float64 {
	ret := make([]float64, len(raw))
	floats.ScaleTo(ret, factor, raw)
	return ret
}
