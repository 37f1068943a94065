package bulk

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	ffdata "github.com/rmera/goffdata"
)

//The container is zstd-compressed text: a "**"-headed magic line, then one
//"##"-headed line per group with its name and dimensions, followed by the
//element list, the reference energies, and one line per atom and
//conformation with coordinates and forces. All values are in canonical
//units (Å, kcal/mol, kcal/mol/Å), so the file ingests with
//ffdata.CanonicalUnits().

const magic = "** goffdata-bulk 1"

//Writer writes a bulk container file, one group at a time.
type Writer struct {
	f    *os.File
	enc  *zstd.Encoder
	w    *bufio.Writer
	open bool
}

//NewWriter creates a bulk container at path.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		f.Close()
		return nil, err
	}
	W := &Writer{f: f, enc: enc, w: bufio.NewWriter(enc), open: true}
	if _, err := fmt.Fprintln(W.w, magic); err != nil {
		W.Close()
		return nil, err
	}
	return W, nil
}

//WGroup writes one molecule's reference data as a group with the given
//name. Names must not contain whitespace. Labels and charges are not part
//of the bulk format; use the per-molecule archives for those.
func (W *Writer) WGroup(name string, mol *ffdata.Molecule) error {
	if !W.open {
		return fmt.Errorf("bulk: writer is closed")
	}
	if name == "" || strings.ContainsAny(name, " \t\n") {
		return fmt.Errorf("bulk: invalid group name %q", name)
	}
	natoms := mol.Len()
	nconfs := mol.NConfs()
	if _, err := fmt.Fprintf(W.w, "## %s %d %d\n", name, natoms, nconfs); err != nil {
		return err
	}
	if err := writeInts(W.w, mol.Elements()); err != nil {
		return err
	}
	if err := writeFloats(W.w, mol.Energies()); err != nil {
		return err
	}
	for c := 0; c < nconfs; c++ {
		x := mol.Coords(c)
		g := mol.Forces(c)
		for a := 0; a < natoms; a++ {
			line := []float64{
				x.At(a, 0), x.At(a, 1), x.At(a, 2),
				g.At(a, 0), g.At(a, 1), g.At(a, 2),
			}
			if err := writeFloats(W.w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

//Close flushes and closes the container. The Writer can not be used
//afterwards.
func (W *Writer) Close() error {
	if !W.open {
		return nil
	}
	W.open = false
	if err := W.w.Flush(); err != nil {
		W.enc.Close()
		W.f.Close()
		return err
	}
	if err := W.enc.Close(); err != nil {
		W.f.Close()
		return err
	}
	return W.f.Close()
}

//Write saves a whole dataset to a bulk container at path, naming the
//groups by molecule position, zero-padded.
func Write(path string, D *ffdata.Dataset) error {
	W, err := NewWriter(path)
	if err != nil {
		return err
	}
	for i := 0; i < D.Len(); i++ {
		if err := W.WGroup(fmt.Sprintf("mol%06d", i), D.Mol(i)); err != nil {
			W.Close()
			return err
		}
	}
	return W.Close()
}

//Read loads a bulk container into an in-memory source whose groups expose
//the arrays under ffdata.DefaultKeys names. Ingest it with
//Dataset.FromSource and ffdata.CanonicalUnits().
func Read(path string) (ffdata.MemSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	r := bufio.NewReader(dec)
	line, err := nextLine(r)
	if err != nil {
		return nil, fmt.Errorf("bulk: can't read header of %s: %v", path, err)
	}
	if line != magic {
		return nil, fmt.Errorf("bulk: %s is not a bulk container (header %q)", path, line)
	}
	keys := ffdata.DefaultKeys()
	src := make(ffdata.MemSource)
	for {
		line, err := nextLine(r)
		if err == io.EOF || line == "" {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bulk: %s: %v", path, err)
		}
		fields := strings.Fields(line)
		if len(fields) != 4 || fields[0] != "##" {
			return nil, fmt.Errorf("bulk: %s: malformed group header %q", path, line)
		}
		name := fields[1]
		natoms, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("bulk: %s, group %s: %v", path, name, err)
		}
		nconfs, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("bulk: %s, group %s: %v", path, name, err)
		}
		g, err := readGroup(r, natoms, nconfs, keys)
		if err != nil {
			return nil, fmt.Errorf("bulk: %s, group %s: %v", path, name, err)
		}
		if _, taken := src[name]; taken {
			return nil, fmt.Errorf("bulk: %s: duplicated group name %s", path, name)
		}
		src[name] = g
	}
	return src, nil
}

func readGroup(r *bufio.Reader, natoms, nconfs int, keys *ffdata.Keys) (*ffdata.MemGroup, error) {
	elements, err := readInts(r, natoms)
	if err != nil {
		return nil, err
	}
	energies, err := readFloats(r, nconfs)
	if err != nil {
		return nil, err
	}
	xyz := make([]float64, 0, nconfs*natoms*3)
	grad := make([]float64, 0, nconfs*natoms*3)
	for c := 0; c < nconfs; c++ {
		for a := 0; a < natoms; a++ {
			vals, err := readFloats(r, 6)
			if err != nil {
				return nil, err
			}
			xyz = append(xyz, vals[:3]...)
			grad = append(grad, vals[3:]...)
		}
	}
	shape := []int{nconfs, natoms, 3}
	return &ffdata.MemGroup{
		IntArrays: map[string][]int{keys.Elements: elements},
		FloatArrays: map[string]*ffdata.FloatArray{
			keys.Energies: {Data: energies, Shape: []int{nconfs}},
			keys.Coords:   {Data: xyz, Shape: shape},
			keys.Forces:   {Data: grad, Shape: shape},
		},
	}, nil
}

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
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
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
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	vals := make([]int, n)
	for i, s := range fields {
		if vals[i], err = strconv.Atoi(s); err != nil {
			return nil, err
		}
	}
	return vals, nil
}
