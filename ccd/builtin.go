package ccd

import "strings"

// Standard residues, written as their bonds. Atoms are listed in the order
// they first appear, element symbols come from the first letter of the name.
const (
	aaBackbone  = "N-CA CA-C C-O C-OXT N-H N-H2 OXT-HXT "
	dnaBackbone = "OP3-P P-OP1 P-OP2 P-O5' O5'-C5' C5'-C4' C4'-O4' C4'-C3' C3'-O3' C3'-C2' C2'-C1' O4'-C1' OP3-HOP3 OP2-HOP2 C5'-H5' C5'-H5'' C4'-H4' C3'-H3' O3'-HO3' C2'-H2' C2'-H2'' C1'-H1' "
	rnaBackbone = "OP3-P P-OP1 P-OP2 P-O5' O5'-C5' C5'-C4' C4'-O4' C4'-C3' C3'-O3' C3'-C2' C2'-O2' C2'-C1' O4'-C1' OP3-HOP3 OP2-HOP2 C5'-H5' C5'-H5'' C4'-H4' C3'-H3' O3'-HO3' C2'-H2' O2'-HO2' C1'-H1' "
	adenine     = "C1'-N9 N9-C8 C8-N7 N7-C5 C5-C6 C6-N6 C6-N1 N1-C2 C2-N3 N3-C4 C4-C5 C4-N9 C8-H8 N6-H61 N6-H62 C2-H2"
	guanine     = "C1'-N9 N9-C8 C8-N7 N7-C5 C5-C6 C6-O6 C6-N1 N1-C2 C2-N2 C2-N3 N3-C4 C4-C5 C4-N9 C8-H8 N1-H1 N2-H21 N2-H22"
	cytosine    = "C1'-N1 N1-C2 C2-O2 C2-N3 N3-C4 C4-N4 C4-C5 C5-C6 C6-N1 N4-H41 N4-H42 C5-H5 C6-H6"
	uracil      = "C1'-N1 N1-C2 C2-O2 C2-N3 N3-C4 C4-O4 C4-C5 C5-C6 C6-N1 N3-H3 C5-H5 C6-H6"
	thymine     = "C1'-N1 N1-C2 C2-O2 C2-N3 N3-C4 C4-O4 C4-C5 C5-C7 C5-C6 C6-N1 N3-H3 C7-H71 C7-H72 C7-H73 C6-H6"
)

type builtin struct {
	name, kind, one string
	bonds           string
}

var builtins = map[string]builtin{
	"ALA": {"ALANINE", peptideLinking, "A", aaBackbone + "CA-CB CA-HA CB-HB1 CB-HB2 CB-HB3"},
	"ARG": {"ARGININE", peptideLinking, "R", aaBackbone + "CA-CB CB-CG CG-CD CD-NE NE-CZ CZ-NH1 CZ-NH2 CA-HA CB-HB2 CB-HB3 CG-HG2 CG-HG3 CD-HD2 CD-HD3 NE-HE NH1-HH11 NH1-HH12 NH2-HH21 NH2-HH22"},
	"ASN": {"ASPARAGINE", peptideLinking, "N", aaBackbone + "CA-CB CB-CG CG-OD1 CG-ND2 CA-HA CB-HB2 CB-HB3 ND2-HD21 ND2-HD22"},
	"ASP": {"ASPARTIC ACID", peptideLinking, "D", aaBackbone + "CA-CB CB-CG CG-OD1 CG-OD2 CA-HA CB-HB2 CB-HB3 OD2-HD2"},
	"CYS": {"CYSTEINE", peptideLinking, "C", aaBackbone + "CA-CB CB-SG CA-HA CB-HB2 CB-HB3 SG-HG"},
	"GLN": {"GLUTAMINE", peptideLinking, "Q", aaBackbone + "CA-CB CB-CG CG-CD CD-OE1 CD-NE2 CA-HA CB-HB2 CB-HB3 CG-HG2 CG-HG3 NE2-HE21 NE2-HE22"},
	"GLU": {"GLUTAMIC ACID", peptideLinking, "E", aaBackbone + "CA-CB CB-CG CG-CD CD-OE1 CD-OE2 CA-HA CB-HB2 CB-HB3 CG-HG2 CG-HG3 OE2-HE2"},
	"GLY": {"GLYCINE", "PEPTIDE LINKING", "G", aaBackbone + "CA-HA2 CA-HA3"},
	"HIS": {"HISTIDINE", peptideLinking, "H", aaBackbone + "CA-CB CB-CG CG-ND1 CG-CD2 ND1-CE1 CD2-NE2 CE1-NE2 CA-HA CB-HB2 CB-HB3 ND1-HD1 CD2-HD2 CE1-HE1 NE2-HE2"},
	"ILE": {"ISOLEUCINE", peptideLinking, "I", aaBackbone + "CA-CB CB-CG1 CB-CG2 CG1-CD1 CA-HA CB-HB CG1-HG12 CG1-HG13 CG2-HG21 CG2-HG22 CG2-HG23 CD1-HD11 CD1-HD12 CD1-HD13"},
	"LEU": {"LEUCINE", peptideLinking, "L", aaBackbone + "CA-CB CB-CG CG-CD1 CG-CD2 CA-HA CB-HB2 CB-HB3 CG-HG CD1-HD11 CD1-HD12 CD1-HD13 CD2-HD21 CD2-HD22 CD2-HD23"},
	"LYS": {"LYSINE", peptideLinking, "K", aaBackbone + "CA-CB CB-CG CG-CD CD-CE CE-NZ CA-HA CB-HB2 CB-HB3 CG-HG2 CG-HG3 CD-HD2 CD-HD3 CE-HE2 CE-HE3 NZ-HZ1 NZ-HZ2 NZ-HZ3"},
	"MET": {"METHIONINE", peptideLinking, "M", aaBackbone + "CA-CB CB-CG CG-SD SD-CE CA-HA CB-HB2 CB-HB3 CG-HG2 CG-HG3 CE-HE1 CE-HE2 CE-HE3"},
	"PHE": {"PHENYLALANINE", peptideLinking, "F", aaBackbone + "CA-CB CB-CG CG-CD1 CG-CD2 CD1-CE1 CD2-CE2 CE1-CZ CE2-CZ CA-HA CB-HB2 CB-HB3 CD1-HD1 CD2-HD2 CE1-HE1 CE2-HE2 CZ-HZ"},
	"PRO": {"PROLINE", peptideLinking, "P", "N-CA CA-C C-O C-OXT N-H OXT-HXT CA-CB CB-CG CG-CD CD-N CA-HA CB-HB2 CB-HB3 CG-HG2 CG-HG3 CD-HD2 CD-HD3"},
	"SER": {"SERINE", peptideLinking, "S", aaBackbone + "CA-CB CB-OG CA-HA CB-HB2 CB-HB3 OG-HG"},
	"THR": {"THREONINE", peptideLinking, "T", aaBackbone + "CA-CB CB-OG1 CB-CG2 CA-HA CB-HB OG1-HG1 CG2-HG21 CG2-HG22 CG2-HG23"},
	"TRP": {"TRYPTOPHAN", peptideLinking, "W", aaBackbone + "CA-CB CB-CG CG-CD1 CG-CD2 CD1-NE1 CD2-CE2 NE1-CE2 CD2-CE3 CE2-CZ2 CE3-CZ3 CZ2-CH2 CZ3-CH2 CA-HA CB-HB2 CB-HB3 CD1-HD1 NE1-HE1 CE3-HE3 CZ2-HZ2 CZ3-HZ3 CH2-HH2"},
	"TYR": {"TYROSINE", peptideLinking, "Y", aaBackbone + "CA-CB CB-CG CG-CD1 CG-CD2 CD1-CE1 CD2-CE2 CE1-CZ CE2-CZ CZ-OH CA-HA CB-HB2 CB-HB3 CD1-HD1 CD2-HD2 CE1-HE1 CE2-HE2 OH-HH"},
	"VAL": {"VALINE", peptideLinking, "V", aaBackbone + "CA-CB CB-CG1 CB-CG2 CA-HA CB-HB CG1-HG11 CG1-HG12 CG1-HG13 CG2-HG21 CG2-HG22 CG2-HG23"},
	"DA":  {"2'-DEOXYADENOSINE-5'-MONOPHOSPHATE", dnaLinking, "A", dnaBackbone + adenine},
	"DC":  {"2'-DEOXYCYTIDINE-5'-MONOPHOSPHATE", dnaLinking, "C", dnaBackbone + cytosine},
	"DG":  {"2'-DEOXYGUANOSINE-5'-MONOPHOSPHATE", dnaLinking, "G", dnaBackbone + guanine},
	"DT":  {"THYMIDINE-5'-MONOPHOSPHATE", dnaLinking, "T", dnaBackbone + thymine},
	"A":   {"ADENOSINE-5'-MONOPHOSPHATE", rnaLinking, "A", rnaBackbone + adenine},
	"C":   {"CYTIDINE-5'-MONOPHOSPHATE", rnaLinking, "C", rnaBackbone + cytosine},
	"G":   {"GUANOSINE-5'-MONOPHOSPHATE", rnaLinking, "G", rnaBackbone + guanine},
	"U":   {"URIDINE-5'-MONOPHOSPHATE", rnaLinking, "U", rnaBackbone + uracil},
	"HOH": {"WATER", nonPolymer, "", "O-H1 O-H2"},
	//the usual first sugar of glycosylated proteins
	"NAG": {"2-acetamido-2-deoxy-beta-D-glucopyranose", "D-SACCHARIDE, BETA LINKING", "", "C1-C2 C1-O1 C1-O5 C2-C3 C2-N2 C3-C4 C3-O3 C4-C5 C4-O4 C5-C6 C5-O5 C6-O6 C7-C8 C7-N2 C7-O7 C1-H1 C2-H2 C3-H3 C4-H4 C5-H5 C6-H61 C6-H62 C8-H81 C8-H82 C8-H83 N2-HN2 O1-HO1 O3-HO3 O4-HO4 O6-HO6"},
}

// ions are single atom components, the atom is named as the component.
var ions = map[string]string{
	"ZN": "Zn", "MG": "Mg", "CA": "Ca", "MN": "Mn", "CU": "Cu", "CO": "Co", "NI": "Ni", "FE": "Fe",
	"NA": "Na", "K": "K", "CL": "Cl",
	"LA": "La", "CE": "Ce", "PR": "Pr", "ND": "Nd", "SM": "Sm", "EU": "Eu", "GD": "Gd",
	"TB": "Tb", "DY": "Dy", "HO": "Ho", "ER": "Er", "TM": "Tm", "YB": "Yb", "LU": "Lu",
}

func builtinComp(id string) (*Comp, bool) {
	if sym, ok := ions[id]; ok {
		c := &Comp{ID: id, Name: strings.ToUpper(sym) + " ION", Type: nonPolymer, Atoms: []Atom{{ID: id, TypeSymbol: sym}}}
		return c, true
	}
	b, ok := builtins[id]
	if !ok {
		return nil, false
	}
	c := &Comp{ID: id, Name: b.name, Type: b.kind, OneLetter: b.one}
	seen := make(map[string]bool)
	add := func(a string) {
		if seen[a] {
			return
		}
		seen[a] = true
		c.Atoms = append(c.Atoms, Atom{ID: a, TypeSymbol: a[:1], Leaving: a == "OXT" || a == "HXT" || a == "H2" && c.IsPeptide() || a == "OP3" || a == "HOP3" || a == "HOP2"})
	}
	for _, bond := range strings.Fields(b.bonds) {
		a1, a2, _ := strings.Cut(bond, "-")
		add(a1)
		add(a2)
		c.Bonds = append(c.Bonds, [2]string{a1, a2})
	}
	return c, true
}
