package graph

//A map for assigning covalent radii to elements, by atomic number.
//Values from Cordero et al., 2008 (DOI:10.1039/B801115J)
//Note that just common "bio-elements" are present
var covrad = map[int]float64{
	1:  0.4, // 0.31. Altered because H always has only one bond; a longer radius is harmless, the extra bonds get eliminated later.
	4:  0.96,
	5:  0.84,
	6:  0.76, //the sp3 radius
	7:  0.71,
	8:  0.66,
	9:  0.57,
	11: 1.66,
	12: 1.41,
	14: 1.11,
	15: 1.07,
	16: 1.05,
	17: 1.02,
	19: 2.03,
	20: 1.76,
	24: 1.39,
	25: 1.61, //hs
	26: 1.52, //hs
	27: 1.5,  //hs
	29: 1.32,
	30: 1.22,
	34: 1.2,
	35: 1.2,
	53: 1.39,
}
