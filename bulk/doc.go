//Package bulk implements a compressed container file for whole conformation
//datasets: a sequence of named groups, each holding the element, energy,
//geometry and force arrays for one molecule, in the library's canonical
//units. The Reader side loads a container as an ffdata.MemSource, so
//Dataset.FromSource ingests it directly. Every value written is recovered
//exactly on read.
package bulk
