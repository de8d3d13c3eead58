package game

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// CalculateChemistry is the mean elementwise product of two trait vectors.
// It is symmetric by construction.
func CalculateChemistry(a, b *Player) float64 {
	products := make([]float64, NumTraits)
	for i := range products {
		products[i] = a.Traits[i] * b.Traits[i]
	}
	return stat.Mean(products, nil)
}

// ChemistryMatrix holds pairwise chemistry for one roster. The diagonal is zero.
type ChemistryMatrix struct {
	index  map[int]int
	values [][]float64
}

// NewChemistryMatrix computes chemistry for every ordered pair of the roster
func NewChemistryMatrix(roster []*Player) *ChemistryMatrix {
	m := &ChemistryMatrix{
		index:  make(map[int]int, len(roster)),
		values: make([][]float64, len(roster)),
	}
	for i, p := range roster {
		m.index[p.ID] = i
		m.values[i] = make([]float64, len(roster))
	}
	for i := range roster {
		for j := range roster {
			if i != j {
				m.values[i][j] = CalculateChemistry(roster[i], roster[j])
			}
		}
	}
	return m
}

// Get returns the chemistry between two roster members
func (m *ChemistryMatrix) Get(playerID, teammateID int) (float64, error) {
	i, ok := m.index[playerID]
	if !ok {
		return 0, fmt.Errorf("%w: player %d is not on the roster", ErrInvalidArgument, playerID)
	}
	j, ok := m.index[teammateID]
	if !ok {
		return 0, fmt.Errorf("%w: player %d is not on the roster", ErrInvalidArgument, teammateID)
	}
	return m.values[i][j], nil
}

// Size returns the roster size the matrix was built for
func (m *ChemistryMatrix) Size() int {
	return len(m.values)
}
