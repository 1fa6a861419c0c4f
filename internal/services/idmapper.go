package services

import "nemt-route-service/internal/domain"

// IDMapper associates domain identifiers with the dense 0-based integer ids
// one solver request uses, per entity kind. It is insert-only during
// preprocessing and read-only afterward; a missing entry means the row never
// preprocessed successfully and is a normal lookup result.
type IDMapper struct {
	byDomain map[domain.Kind]map[string]int
	bySolver map[domain.Kind]map[int]string
}

func NewIDMapper() *IDMapper {
	return &IDMapper{
		byDomain: map[domain.Kind]map[string]int{},
		bySolver: map[domain.Kind]map[int]string{},
	}
}

// Assign gives the next dense solver id for the kind and records the pair.
// Assigning the same domain id twice returns the existing solver id.
func (m *IDMapper) Assign(kind domain.Kind, domainID string) int {
	if m.byDomain[kind] == nil {
		m.byDomain[kind] = map[string]int{}
		m.bySolver[kind] = map[int]string{}
	}

	if id, ok := m.byDomain[kind][domainID]; ok {
		return id
	}

	id := len(m.byDomain[kind])
	m.byDomain[kind][domainID] = id
	m.bySolver[kind][id] = domainID
	return id
}

// DomainID resolves a solver id back to its domain id.
func (m *IDMapper) DomainID(kind domain.Kind, solverID int) (string, bool) {
	domainID, ok := m.bySolver[kind][solverID]
	return domainID, ok
}

// SolverID resolves a domain id to its solver id.
func (m *IDMapper) SolverID(kind domain.Kind, domainID string) (int, bool) {
	solverID, ok := m.byDomain[kind][domainID]
	return solverID, ok
}

// Count reports how many rows of the kind were assigned ids.
func (m *IDMapper) Count(kind domain.Kind) int {
	return len(m.byDomain[kind])
}
