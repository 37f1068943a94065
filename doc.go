/*
 * doc.go, part of goFFData.
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

//Package ffdata builds and curates datasets of small-molecule conformations
//for fitting and benchmarking empirical forcefields. A Dataset is an ordered
//collection of Molecules, each owning a set of conformations with reference
//(typically quantum-chemical) energies and forces, plus any number of named
//forcefield label sets obtained by scoring the same geometries with an
//external forcefield.
//
//The package covers ingestion from bulk archival sources (with unit
//normalization into Å, kcal/mol and kcal/mol/Å), pruning of high-energy or
//high-force conformations, statistical validity filtering of forcefield
//labels against the reference data, and reversible persistence, one
//compressed file per molecule. Graph-tensor export for machine-learning
//pipelines lives in the graph subpackage, bulk container files in bulk,
//and diagnostic plots in dataplot.
//
//All containers here are meant for single-threaded, batch-style use. Per
//molecule work is independent, so callers may parallelize it themselves, but
//a Dataset must not be mutated from several goroutines at once.
package ffdata
