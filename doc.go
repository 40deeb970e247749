/*
 * doc.go, part of mrchem.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
 * mrchem is developed at the laboratory for instruction in Swedish, Department of Chemistry,
 * University of Helsinki, Finland.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*Package chem is the main package of the mrchem library. It holds the coordinate model that NMR
restraint files are interpreted against, and the facilities to read it from mmCIF files.


	**mrchem Capabilities**


    Reads mmCIF files, plain or gzip/zstd compressed, into an in-memory Store of
	categories. Uncompressed files are mapped into memory.

    Builds, from the pdbx scheme, atom_site and unobserved categories, a Model
	of the representative model and alternate location: polymer, non-polymer
	and branched chains, the atoms of each residue and the maps among the
	label, author, original and NMR-STAR numbering schemes.

    Detects cyclic polymers, from struct_conn links or from the coordinates
	of the terminal residues.

    Measures distances, angles and dihedrals on the model coordinates and
	decides covalent bonding from covalent radii.

    The restraint interpretation itself lives in the mr package, with the
	component dictionary (ccd), atom nomenclature (nomenclature), residue
	statistics (chemstat), sequence alignment (align) and NMR-STAR output
	(star) as supporting packages.



mrchem implements its own matrix type for coordinates, v3.Matrix, based on gonum.org/v1/gonum/mat.

Each row of a v3.Matrix represents one point in space. We recomend prefering the Vec* methods
over the Row* methods when manipulating a v3.Matrix.*/
package chem
