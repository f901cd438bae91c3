package app

import "github.com/hylla/leadflow/internal/domain"

// BoardColumn is one status bucket of the board.
type BoardColumn struct {
	Status domain.Status `json:"status"`
	Title  string        `json:"title"`
	Leads  []domain.Lead `json:"leads"`
}

// Partition groups leads by status in fixed column order, keeping the relative
// order of the input inside each column.
func Partition(leads []domain.Lead) []BoardColumn {
	defs := domain.Statuses()
	cols := make([]BoardColumn, len(defs))
	index := make(map[domain.Status]int, len(defs))
	for i, def := range defs {
		cols[i] = BoardColumn{Status: def.Status, Title: def.Title, Leads: []domain.Lead{}}
		index[def.Status] = i
	}
	for _, lead := range leads {
		i, ok := index[lead.Status]
		if !ok {
			continue
		}
		cols[i].Leads = append(cols[i].Leads, lead)
	}
	return cols
}

// Count returns the number of leads across all columns.
func Count(cols []BoardColumn) int {
	total := 0
	for _, col := range cols {
		total += len(col.Leads)
	}
	return total
}
