/*
 * compress.go, part of goFFData.
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
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/goffdata/v3"
)

//The mcz format is a zstd-compressed text file holding one molecule:
//a "**" header with the atom, conformation and label counts, the element
//list, the reference energies, one line per atom and conformation with
//coordinates and forces, and one ">"-headed block per forcefield label.
//Floats are serialized with the shortest representation that parses back
//to the same value, so a save/load cycle is exact.

//Compress writes the molecule to path as a compressed per-molecule archive.
func (M *Molecule) Compress(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errDecorate(err, "Compress")
	}
	defer f.Close()
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return errDecorate(err, "Compress")
	}
	w := bufio.NewWriter(enc)
	if err := M.write(w); err != nil {
		enc.Close()
		return errDecorate(err, "Compress")
	}
	if err := w.Flush(); err != nil {
		enc.Close()
		return errDecorate(err, "Compress")
	}
	if err := enc.Close(); err != nil {
		return errDecorate(err, "Compress")
	}
	return nil
}

func (M *Molecule) write(w io.Writer) error {
	hasq := 0
	if M.charges != nil {
		hasq = 1
	}
	if _, err := fmt.Fprintf(w, "** %d %d %d %d\n", M.Len(), M.NConfs(), len(M.labels), hasq); err != nil {
		return err
	}
	if err := writeInts(w, M.elements); err != nil {
		return err
	}
	if hasq == 1 {
		if err := writeFloats(w, M.charges); err != nil {
			return err
		}
	}
	if err := writeFloats(w, M.energies); err != nil {
		return err
	}
	for c := 0; c < M.NConfs(); c++ {
		for a := 0; a < M.Len(); a++ {
			line := []float64{
				M.coords[c].At(a, 0), M.coords[c].At(a, 1), M.coords[c].At(a, 2),
				M.forces[c].At(a, 0), M.forces[c].At(a, 1), M.forces[c].At(a, 2),
			}
			if err := writeFloats(w, line); err != nil {
				return err
			}
		}
	}
	for _, name := range M.LabelNames() {
		lab := M.labels[name]
		if _, err := fmt.Fprintf(w, "> %s %s\n", name, formatFloat(lab.Offset)); err != nil {
			return err
		}
		if err := writeFloats(w, lab.Energies); err != nil {
			return err
		}
		for c := 0; c < M.NConfs(); c++ {
			for a := 0; a < M.Len(); a++ {
				line := []float64{lab.Forces[c].At(a, 0), lab.Forces[c].At(a, 1), lab.Forces[c].At(a, 2)}
				if err := writeFloats(w, line); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

//Decompress reads a molecule from a compressed per-molecule archive.
func Decompress(path string) (*Molecule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errDecorate(err, "Decompress")
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, errDecorate(err, "Decompress")
	}
	defer dec.Close()
	mol, err := readMolecule(bufio.NewReader(dec))
	if err != nil {
		return nil, cError("Decompress", "File %s: %v", path, err)
	}
	return mol, nil
}

func readMolecule(r *bufio.Reader) (*Molecule, error) {
	head, err := nextLine(r)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(head)
	if len(fields) != 5 || fields[0] != "**" {
		return nil, fmt.Errorf("malformed header %q", head)
	}
	var natoms, nconfs, nlabels, hasq int
	for i, dst := range []*int{&natoms, &nconfs, &nlabels, &hasq} {
		if *dst, err = strconv.Atoi(fields[i+1]); err != nil {
			return nil, fmt.Errorf("malformed header %q: %v", head, err)
		}
	}
	elements, err := readInts(r, natoms)
	if err != nil {
		return nil, err
	}
	var charges []float64
	if hasq == 1 {
		if charges, err = readFloats(r, natoms); err != nil {
			return nil, err
		}
	}
	energies, err := readFloats(r, nconfs)
	if err != nil {
		return nil, err
	}
	coords := make([]*v3.Matrix, nconfs)
	forces := make([]*v3.Matrix, nconfs)
	for c := 0; c < nconfs; c++ {
		x := make([]float64, 0, natoms*3)
		g := make([]float64, 0, natoms*3)
		for a := 0; a < natoms; a++ {
			vals, err := readFloats(r, 6)
			if err != nil {
				return nil, err
			}
			x = append(x, vals[:3]...)
			g = append(g, vals[3:]...)
		}
		if coords[c], err = v3.NewMatrix(x); err != nil {
			return nil, err
		}
		if forces[c], err = v3.NewMatrix(g); err != nil {
			return nil, err
		}
	}
	mol, err := NewMolecule(elements, coords, energies, forces)
	if err != nil {
		return nil, err
	}
	if charges != nil {
		if err := mol.SetCharges(charges); err != nil {
			return nil, err
		}
	}
	for l := 0; l < nlabels; l++ {
		head, err := nextLine(r)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(head)
		if len(fields) != 3 || fields[0] != ">" {
			return nil, fmt.Errorf("malformed label header %q", head)
		}
		lab := &Label{}
		if lab.Offset, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return nil, err
		}
		if lab.Energies, err = readFloats(r, nconfs); err != nil {
			return nil, err
		}
		lab.Forces = make([]*v3.Matrix, nconfs)
		for c := 0; c < nconfs; c++ {
			g := make([]float64, 0, natoms*3)
			for a := 0; a < natoms; a++ {
				vals, err := readFloats(r, 3)
				if err != nil {
					return nil, err
				}
				g = append(g, vals...)
			}
			if lab.Forces[c], err = v3.NewMatrix(g); err != nil {
				return nil, err
			}
		}
		if err := mol.SetLabel(fields[1], lab); err != nil {
			return nil, err
		}
	}
	return mol, nil
}

//SaveCompressed writes the dataset as one compressed archive per molecule
//under dir, named by the molecule's position, zero-padded so lexicographic
//order matches numeric order. If dir already exists and overwrite is not
//set, it returns an error before writing anything.
func (D *Dataset) SaveCompressed(dir string, overwrite bool) error {
	if _, err := os.Stat(dir); err == nil && !overwrite {
		return cError("SaveCompressed", "Path %s already exists, set overwrite to replace it", dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errDecorate(err, "SaveCompressed")
	}
	for i, mol := range D.mols {
		name := filepath.Join(dir, fmt.Sprintf("%06d.mcz", i))
		if err := mol.Compress(name); err != nil {
			return errDecorate(err, "SaveCompressed")
		}
	}
	if D.Info {
		log.Printf("goFFData: saved %d molecules to %s", D.Len(), dir)
	}
	return nil
}

//LoadCompressed reads every per-molecule archive under dir into a new
//Dataset. Without keepOrder, files come in directory-traversal order; with
//it they are sorted by file name, the key SaveCompressed wrote them under,
//so a save/load cycle reproduces the membership in order.
func LoadCompressed(dir string, keepOrder bool) (*Dataset, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.mcz"))
	if err != nil {
		return nil, errDecorate(err, "LoadCompressed")
	}
	if keepOrder {
		sort.Strings(paths)
	}
	D := NewDataset()
	for _, p := range paths {
		mol, err := Decompress(p)
		if err != nil {
			return nil, errDecorate(err, "LoadCompressed")
		}
		if err := D.Append(mol); err != nil {
			return nil, errDecorate(err, "LoadCompressed")
		}
	}
	return D, nil
}

//Serialization helpers. The 'g'/-1 formatting gives the shortest string
//that parses back to exactly the same float64.

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeFloats(w io.Writer, vals []float64) error {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = formatFloat(v)
	}
	_, err := fmt.Fprintln(w, strings.Join(strs, " "))
	return err
}

func writeInts(w io.Writer, vals []int) error {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = strconv.Itoa(v)
	}
	_, err := fmt.Fprintln(w, strings.Join(strs, " "))
	return err
}

func nextLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}

func readFloats(r *bufio.Reader, n int) ([]float64, error) {
	line, err := nextLine(r)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d values, got %d in %q", n, len(fields), line)
	}
	vals := make([]float64, n)
	for i, s := range fields {
		if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
			return nil, err
		}
	}
	return vals, nil
}

func readInts(r *bufio.Reader, n int) ([]int, error) {
	line, err := nextLine(r)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d values, got %d in %q", n, len(fields), line)
	}
	vals := make([]int, n)
	for i, s := range fields {
		if vals[i], err = strconv.Atoi(s); err != nil {
			return nil, err
		}
	}
	return vals, nil
}
