/*
 * v3.go, part of goFFData.
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

package v3

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//Matrix is a set of vectors in 3D space. Within the package it is understood
//that a "vector" is a row, i.e. the cartesian coordinates of a point, or the
//3 components of the force on an atom.
type Matrix struct {
	*mat.Dense
}

//NewMatrix generates and returns a Matrix with 3 columns from data,
//which is read in row-major order. The Matrix keeps a reference to data.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 || rows < 1 {
		return nil, Error{fmt.Sprintf("Input slice length %d is not a positive multiple of %d", l, cols), []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(rows, cols, data)}, nil
}

//Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

//Dense2Matrix returns a Matrix backed by the given Dense. Panics if
//the Dense does not have 3 columns.
func Dense2Matrix(A *mat.Dense) *Matrix {
	_, c := A.Dims()
	if c != 3 {
		panic(not3xXMatrix)
	}
	return &Matrix{A}
}

//Matrix2Dense returns the Dense behind the given Matrix.
func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

//NVecs returns the number of vectors in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(not3xXMatrix)
	}
	return r
}

//VecView returns a view of the ith vector of F. Changes in the view are
//reflected in F and vice-versa.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

//Clone returns an independent copy of F.
func (F *Matrix) Clone() *Matrix {
	return &Matrix{mat.DenseCopyOf(F.Dense)}
}

//Row puts the ith vector of F in dst (allocating if dst is nil)
//and returns it.
func (F *Matrix) Row(dst []float64, i int) []float64 {
	return mat.Row(dst, i, F.Dense)
}

//ScaleBy multiplies every element of F by factor, in place.
func (F *Matrix) ScaleBy(factor float64) {
	F.Dense.Scale(factor, F.Dense)
}

//MaxAbs returns the largest absolute value among the components of F.
func (F *Matrix) MaxAbs() float64 {
	return math.Max(mat.Max(F.Dense), -mat.Min(F.Dense))
}

//EqualVecs returns true if F and A have the same shape and every component
//differs by no more than tol.
func (F *Matrix) EqualVecs(A *Matrix, tol float64) bool {
	fr, fc := F.Dims()
	ar, ac := A.Dims()
	if fr != ar || fc != ac {
		return false
	}
	for i := 0; i < fr; i++ {
		for j := 0; j < fc; j++ {
			if math.Abs(F.At(i, j)-A.At(i, j)) > tol {
				return false
			}
		}
	}
	return true
}

const not3xXMatrix = "v3: Matrix not of 3xN dimensions"

//Error is the error type for the v3 package, compatible with the
//Error interface of the parent package.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string { return err.message }

//Decorate adds new information to the error, and returns the
//current decoration slice.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }
