package encoding

import "fmt"

// NumRegisters is the number of general-purpose registers in the
// Luz register file. Register 0 is hard-wired to zero.
const NumRegisters = 32

var registerAliases = map[string]int{
	"$zero": 0,
	"$at":   1,
	"$v0":   2, "$v1": 3,
	"$a0": 4, "$a1": 5, "$a2": 6, "$a3": 7,
	"$t0": 8, "$t1": 9, "$t2": 10, "$t3": 11, "$t4": 12,
	"$t5": 13, "$t6": 14, "$t7": 15, "$t8": 16, "$t9": 17,
	"$s0": 18, "$s1": 19, "$s2": 20, "$s3": 21, "$s4": 22,
	"$s5": 23, "$s6": 24, "$s7": 25,
	"$k0": 26, "$k1": 27,
	"$fp": 28,
	"$sp": 29,
	"$re": 30,
	"$ra": 31,
}

// RegisterNumber resolves a register spelling ("$rN" or a standard
// alias like "$sp") to its 0..31 register number. It does not accept
// bare numbers or identifiers lacking the leading '$'.
func RegisterNumber(name string) (int, bool) {
	if n, ok := registerAliases[name]; ok {
		return n, true
	}
	if len(name) >= 2 && name[0] == '$' && name[1] == 'r' {
		var n int
		if _, err := fmt.Sscanf(name[2:], "%d", &n); err == nil && n >= 0 && n < NumRegisters {
			// Reject spellings like "$r05" that Sscanf would still parse;
			// require the canonical decimal form to round-trip.
			if fmt.Sprintf("$r%d", n) == name {
				return n, true
			}
		}
	}
	return 0, false
}
