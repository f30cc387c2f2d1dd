package geometry

import "fmt"

// Kind identifies a topological entity type by the number of vertices it
// references.
type Kind uint8

const (
	Edge2  Kind = 2
	Tria3  Kind = 3
	Tetra4 Kind = 4
)

// Kinds returns the supported kinds from lowest to highest dimension.
func Kinds() []Kind { return []Kind{Edge2, Tria3, Tetra4} }

// Arity is the number of vertex indices per entity.
func (k Kind) Arity() int { return int(k) }

// Dim is the topological dimension of the entity.
func (k Kind) Dim() int { return int(k) - 1 }

func (k Kind) valid() bool {
	return k == Edge2 || k == Tria3 || k == Tetra4
}

func (k Kind) String() string {
	switch k {
	case Edge2:
		return "edge2"
	case Tria3:
		return "tria3"
	case Tetra4:
		return "tetra4"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}
