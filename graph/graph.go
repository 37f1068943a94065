//Package graph converts curated datasets into graph-structured tensors for
//downstream learning frameworks: one graph per molecule, with atoms as
//nodes, bonds as edges, and the stored reference and forcefield labels as
//named numeric attributes. It also provides reproducible randomized
//partitioning into named subsets.
package graph

import (
	"fmt"
	"math"
	"math/rand"

	ffdata "github.com/rmera/goffdata"
	"gonum.org/v1/gonum/mat"
)

//bond tolerance in Å, from DOI:10.1186/1758-2946-3-33
const bondtol = 0.45

//Graph is the graph-tensor rendering of one molecule. Attribute maps go
//from names to matrices: node attributes have one row per atom, edge
//attributes one row per bond, graph attributes a single row. Attributes
//spanning conformations are laid out row-major, 3 contiguous columns per
//conformation for the vector ones. Forcefield labels follow the
//"<quantity>_<label>" naming, so several parametrizations never collide.
type Graph struct {
	NAtoms int
	Edges  [][2]int
	Nodes  map[string]*mat.Dense
	Edata  map[string]*mat.Dense
	Gdata  map[string]*mat.Dense
}

//FromMolecule renders one molecule as a Graph. Node attributes: "z"
//(atomic numbers), "q" (partial charges, when set), "xyz" (geometries) and
//"grad_ref" plus one "grad_<label>" per stored label (forces). Graph
//attributes: "u_ref", one "u_<label>" and one "u_offset_<label>" per label.
//Edge attribute: "dist", the bond length in the first conformation, which
//is also the geometry bonds are assigned from.
func FromMolecule(M *ffdata.Molecule) (*Graph, error) {
	n := M.Len()
	nc := M.NConfs()
	edges, dists, err := bonds(M)
	if err != nil {
		return nil, err
	}
	G := &Graph{
		NAtoms: n,
		Edges:  edges,
		Nodes:  make(map[string]*mat.Dense),
		Edata:  make(map[string]*mat.Dense),
		Gdata:  make(map[string]*mat.Dense),
	}
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		z[i] = float64(M.AtomicNumber(i))
	}
	G.Nodes["z"] = mat.NewDense(n, 1, z)
	if q := M.Charges(); q != nil {
		qq := make([]float64, n)
		copy(qq, q)
		G.Nodes["q"] = mat.NewDense(n, 1, qq)
	}
	G.Nodes["xyz"] = perAtomAttr(n, nc, func(c int) matrixAt { return M.Coords(c) })
	G.Nodes["grad_ref"] = perAtomAttr(n, nc, func(c int) matrixAt { return M.Forces(c) })
	G.Gdata["u_ref"] = mat.NewDense(1, nc, M.Energies())
	for _, name := range M.LabelNames() {
		lab, _ := M.Label(name)
		u := make([]float64, nc)
		copy(u, lab.Energies)
		G.Gdata["u_"+name] = mat.NewDense(1, nc, u)
		G.Gdata["u_offset_"+name] = mat.NewDense(1, 1, []float64{lab.Offset})
		forces := lab.Forces
		G.Nodes["grad_"+name] = perAtomAttr(n, nc, func(c int) matrixAt { return forces[c] })
	}
	if len(edges) > 0 {
		G.Edata["dist"] = mat.NewDense(len(edges), 1, dists)
	}
	return G, nil
}

//matrixAt is the common surface of the per-conformation accessors.
type matrixAt interface {
	At(i, j int) float64
}

//perAtomAttr packs a per-conformation vector quantity into an n×(3·nconfs)
//node attribute.
func perAtomAttr(n, nc int, src func(c int) matrixAt) *mat.Dense {
	out := mat.NewDense(n, 3*nc, nil)
	for c := 0; c < nc; c++ {
		m := src(c)
		for a := 0; a < n; a++ {
			for k := 0; k < 3; k++ {
				out.Set(a, 3*c+k, m.At(a, k))
			}
		}
	}
	return out
}

//bonds assigns bonds with a simple distance criterion on the first
//conformation, similar to that described in DOI:10.1186/1758-2946-3-33.
//Not thought for proteins or other macromolecules.
func bonds(M *ffdata.Molecule) ([][2]int, []float64, error) {
	coord := M.Coords(0)
	n := M.Len()
	edges := make([][2]int, 0, n)
	dists := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		cov1, ok := covrad[M.AtomicNumber(i)]
		if !ok {
			return nil, nil, fmt.Errorf("graph: no covalent radius for atomic number %d (atom %d)", M.AtomicNumber(i), i)
		}
		for j := i + 1; j < n; j++ {
			cov2, ok := covrad[M.AtomicNumber(j)]
			if !ok {
				return nil, nil, fmt.Errorf("graph: no covalent radius for atomic number %d (atom %d)", M.AtomicNumber(j), j)
			}
			var d2 float64
			for k := 0; k < 3; k++ {
				t := coord.At(i, k) - coord.At(j, k)
				d2 += t * t
			}
			d := math.Sqrt(d2)
			if d <= cov1+cov2+bondtol {
				edges = append(edges, [2]int{i, j})
				dists = append(dists, d)
			}
		}
	}
	return edges, dists, nil
}

//Graphs renders the molecules of a dataset as Graphs. A nil idxs means the
//whole dataset; otherwise only the given positions, in the given order.
//Compose with Split for partitioned exports: the index subset always
//applies first.
func Graphs(D *ffdata.Dataset, idxs []int) ([]*Graph, error) {
	if idxs == nil {
		idxs = make([]int, D.Len())
		for i := range idxs {
			idxs[i] = i
		}
	}
	gs := make([]*Graph, 0, len(idxs))
	for _, idx := range idxs {
		if idx < 0 || idx >= D.Len() {
			return nil, fmt.Errorf("graph: index %d out of range for a dataset of %d molecules", idx, D.Len())
		}
		g, err := FromMolecule(D.Mol(idx))
		if err != nil {
			return nil, err
		}
		gs = append(gs, g)
	}
	return gs, nil
}

//Split shuffles the given graphs with the given seed and partitions them
//into named subsets with the given fractions (which must sum to 1). Sizes
//are rounded down except for the last subset, which takes the remainder,
//so the partition is lossless and duplication-free. The same seed always
//yields the same partition.
func Split(gs []*Graph, names []string, fracs []float64, seed int64) (map[string][]*Graph, error) {
	if len(names) == 0 || len(names) != len(fracs) {
		return nil, fmt.Errorf("graph: need one fraction per subset name, got %d names and %d fractions", len(names), len(fracs))
	}
	var sum float64
	for _, f := range fracs {
		if f < 0 {
			return nil, fmt.Errorf("graph: negative fraction %v", f)
		}
		sum += f
	}
	if math.Abs(sum-1) > 1e-6 {
		return nil, fmt.Errorf("graph: fractions sum to %v, not 1", sum)
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("graph: duplicated subset name %s", name)
		}
		seen[name] = true
	}
	perm := rand.New(rand.NewSource(seed)).Perm(len(gs))
	out := make(map[string][]*Graph, len(names))
	start := 0
	for i, name := range names {
		size := int(fracs[i] * float64(len(gs)))
		if i == len(names)-1 {
			size = len(gs) - start
		}
		sub := make([]*Graph, 0, size)
		for _, p := range perm[start : start+size] {
			sub = append(sub, gs[p])
		}
		out[name] = sub
		start += size
	}
	return out, nil
}
