package wallet

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// DerivationPath is the internal representation of a path relative to an
// account key
type DerivationPath []uint32

// NewDerivationPath returns the relative path branch/index.
func NewDerivationPath(branch Branch, index uint32) DerivationPath {
	return DerivationPath{uint32(branch), index}
}

// String converts a relative derivation path to its canonical representation,
// ie. 0/5 for the sixth receive address.
func (path DerivationPath) String() string {
	if len(path) <= 0 {
		return ""
	}

	elems := make([]string, 0, len(path))
	for _, component := range path {
		var hardened bool
		if component >= hdkeychain.HardenedKeyStart {
			component -= hdkeychain.HardenedKeyStart
			hardened = true
		}
		elem := fmt.Sprintf("%d", component)
		if hardened {
			elem += "'"
		}
		elems = append(elems, elem)
	}
	return strings.Join(elems, "/")
}
