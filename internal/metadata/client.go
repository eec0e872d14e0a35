// Package metadata looks up normalized catalog fields for already-imported
// items. The sync engine never uses it for discovery or search.
package metadata

import (
	"context"

	"github.com/rafag508/mycollection/internal/models"
)

// Lookup fetches the current upstream state of an item by its provider id.
// The returned item carries no local ID; callers graft the fields onto their
// own record.
type Lookup interface {
	Lookup(ctx context.Context, kind models.ItemKind, tmdbID int) (*models.CatalogItem, error)
}
