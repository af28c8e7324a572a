package salla

import "context"

// ---------------------------------------------------------------------------
// Category tree
// ---------------------------------------------------------------------------

// CategoryNode is one node of the product category tree, positioned with a
// nested-interval encoding: a node's (Lft, Rgt) interval strictly contains
// the intervals of all its descendants, and Lft < Rgt always.
type CategoryNode struct {
	// Key is the local natural key.
	Key string
	// Translations keyed by locale, "ar" and "en". The "ar" name is the
	// primary display name.
	Translations map[string]CategoryTranslation
	// ParentKey is empty for roots.
	ParentKey string
	// Lft and Rgt are the interval bounds maintained by the repository.
	Lft int
	Rgt int
	// SyncEnabled categories are eligible for push and for inclusion in
	// product payloads.
	SyncEnabled bool
}

// CategoryTranslation holds the locale-dependent fields of a category.
type CategoryTranslation struct {
	Name string
}

// Name returns the name for locale, falling back to "en" then "ar".
func (c *CategoryNode) Name(locale string) string {
	if t, ok := c.Translations[locale]; ok && t.Name != "" {
		return t.Name
	}
	if t, ok := c.Translations["en"]; ok && t.Name != "" {
		return t.Name
	}
	return c.Translations["ar"].Name
}

// IsLeaf reports whether the node has no children under the interval
// encoding.
func (c *CategoryNode) IsLeaf() bool {
	return c.Rgt == c.Lft+1
}

// Contains reports whether other is a strict descendant of c.
func (c *CategoryNode) Contains(other *CategoryNode) bool {
	return c.Lft < other.Lft && other.Rgt < c.Rgt
}

// CategoryRepository maintains the tree. Save places new nodes under their
// parent and rebalances the interval bounds; callers never set Lft/Rgt.
type CategoryRepository interface {
	ByKey(ctx context.Context, key string) (*CategoryNode, error)
	Save(ctx context.Context, node *CategoryNode) error
	// Ancestors returns the chain from root to the node's parent, outermost
	// first.
	Ancestors(ctx context.Context, key string) ([]*CategoryNode, error)
	// Descendants returns every node strictly inside the node's interval.
	Descendants(ctx context.Context, key string) ([]*CategoryNode, error)
	// Roots returns the top-level nodes ordered by Lft.
	Roots(ctx context.Context) ([]*CategoryNode, error)
}
