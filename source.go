/*
 * source.go, part of goFFData.
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

import "sort"

//FloatArray couples a flat float slice with its row-major shape.
type FloatArray struct {
	Data  []float64
	Shape []int
}

//MemGroup is an in-memory Group: keyed integer and float arrays for one
//molecule.
type MemGroup struct {
	IntArrays   map[string][]int
	FloatArrays map[string]*FloatArray
}

//Ints returns the integer array stored under key.
func (G *MemGroup) Ints(key string) ([]int, error) {
	a, ok := G.IntArrays[key]
	if !ok {
		return nil, cError("Ints", "No integer array %s in group", key)
	}
	return a, nil
}

//Floats returns the float array stored under key, with its shape.
func (G *MemGroup) Floats(key string) ([]float64, []int, error) {
	a, ok := G.FloatArrays[key]
	if !ok {
		return nil, nil, cError("Floats", "No float array %s in group", key)
	}
	return a.Data, a.Shape, nil
}

//MemSource is an in-memory Source: a map from group names to groups. It
//iterates groups in sorted name order.
type MemSource map[string]*MemGroup

//Names returns the group names, sorted.
func (S MemSource) Names() []string {
	names := make([]string, 0, len(S))
	for name := range S {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

//Group returns the named group.
func (S MemSource) Group(name string) (Group, error) {
	g, ok := S[name]
	if !ok {
		return nil, cError("Group", "No group %s in source", name)
	}
	return g, nil
}
