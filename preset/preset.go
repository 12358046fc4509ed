// Package preset names the built-in seed groupings.
//
// Each preset splits the digits of a base numeral:
//
//	nananiji  227  [227] [22 7] [2 2 7]
//	hanshin   334  [334] [33 4] [3 3 4]  (+ [3 34] with split)
//	kyojin    264  [264] [26 4] [2 6 4]  (+ [2 64] with split)
//
// Presets are plain values resolved by a switch; there is no registry.
package preset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknown is returned for a preset name that does not exist.
var ErrUnknown = errors.New("unknown preset")

// Name identifies a preset.
type Name string

const (
	Nananiji Name = "nananiji"
	Hanshin  Name = "hanshin"
	Kyojin   Name = "kyojin"
)

// Names lists all presets.
var Names = []Name{Nananiji, Hanshin, Kyojin}

// Parse resolves a case-insensitive preset name.
func Parse(s string) (Name, error) {
	switch n := Name(strings.ToLower(strings.TrimSpace(s))); n {
	case Nananiji, Hanshin, Kyojin:
		return n, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknown, s)
	}
}

// Groupings returns the seed groupings of a preset.
//
// allowSplit adds the extra [first, rest] split for hanshin and kyojin.
// It has no effect on nananiji.
func Groupings(name Name, allowSplit bool) ([][]int64, error) {
	switch name {
	case Nananiji:
		return [][]int64{
			{227},
			{22, 7},
			{2, 2, 7},
		}, nil
	case Hanshin:
		g := [][]int64{
			{334},
			{33, 4},
			{3, 3, 4},
		}
		if allowSplit {
			g = append(g, []int64{3, 34})
		}
		return g, nil
	case Kyojin:
		g := [][]int64{
			{264},
			{26, 4},
			{2, 6, 4},
		}
		if allowSplit {
			g = append(g, []int64{2, 64})
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknown, string(name))
	}
}

// BlobName returns the conventional blob name for a persisted generator.
func BlobName(name Name, allowSplit bool) string {
	if allowSplit && name != Nananiji {
		return string(name) + "_a.bin"
	}
	return string(name) + ".bin"
}
