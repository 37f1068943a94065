/*
 * interfaces.go, part of goFFData.
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

import v3 "github.com/rmera/goffdata/v3"

// Atomer is the basic interface for a topology: an ordered set of atoms
// identified by their atomic numbers.
type Atomer interface {

	//Len returns the number of atoms.
	Len() int

	//AtomicNumber returns the atomic number of the ith atom. Should panic
	//if out of range.
	AtomicNumber(i int) int
}

// Charger is implemented by topologies that carry per-atom partial charges.
// Scorers whose charge assignment is not fixed by the topology alone can
// type-assert their Atomer argument against it.
type Charger interface {

	//Charges returns the per-atom partial charges, or nil if unset.
	Charges() []float64
}

// Scorer evaluates an empirical forcefield on one conformation of a topology.
// It returns the total energy in kcal/mol and the per-atom forces in
// kcal/mol/Å. Scorers are not assumed to be safe for concurrent use.
type Scorer interface {
	Score(top Atomer, coords *v3.Matrix) (energy float64, forces *v3.Matrix, err error)
}

// ChargeProvider maps a topology to per-atom partial charges, for scorers
// that need them (say, machine-learned or bond-charge-increment charges).
type ChargeProvider interface {
	Charges(top Atomer) ([]float64, error)
}

// Group is one named entry of a bulk archival source. It exposes flat
// integer and float arrays by key; float arrays come with their row-major
// shape, as the source stores multi-dimensional data flattened.
type Group interface {
	Ints(key string) ([]int, error)
	Floats(key string) (data []float64, shape []int, err error)
}

// Source is a bulk archival source: a set of named groups, each holding the
// arrays for one molecule. Names returns the iteration order.
type Source interface {
	Names() []string
	Group(name string) (Group, error)
}

// Error is the interface for errors that all packages in this library
// implement. The Decorate method allows to add and retrieve info from the
// error, without changing its type or wrapping it around something else.
// Each call appends the caller's name (plus any relevant extra) to the
// decoration slice and returns it; an empty string just returns the
// current value.
type Error interface {
	Error() string
	Decorate(string) []string
}
