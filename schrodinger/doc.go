/*
Package schrodinger drives the interpretation engine with the restraints of
Schrodinger (ASL) files. A file is given as a stream of entities, one per
restraint, each with its kind (FXDI, FXTA, FXBA, FXHB and the paramagnetic
FXPRE, FXPCS and FXRDC), its atom selections as ASL expression trees and its
numbers:

	FXDI   force constant, lower, upper[, target]
	FXHB   force constant, lower, upper (donor, hydrogen, acceptor)
	FXTA   force constant, target, half width[, multiplicity]
	FXBA   force constant, target, half width
	FXPRE  value[, error] (center and nucleus, or nucleus only)
	FXPCS  value[, error] (as FXPRE)
	FXRDC  value[, error]
*/
package schrodinger
