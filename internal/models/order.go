package models

// OrderList is the user-chosen display order for the catalog, stored as a
// single remote document. Invariant: after every read it covers every id
// currently in the catalog.
type OrderList struct {
	IDs []string `json:"ids"`
}
