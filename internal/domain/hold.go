package domain

import "time"

// HeldTransaction is a suspended cart. It is written once and only ever deleted afterwards.
type HeldTransaction struct {
	ID        string     `json:"id"`
	Lines     []CartLine `json:"lines"`
	TableRef  string     `json:"table_ref,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

func (h HeldTransaction) ItemCount() int {
	n := 0
	for _, l := range h.Lines {
		n += l.Quantity
	}
	return n
}
