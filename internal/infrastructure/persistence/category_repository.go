package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/infrastructure/persistence/models"
)

// GormCategoryRepository implements salla.CategoryRepository using GORM. The
// tree is stored under a nested-interval encoding: every node's (lft, rgt)
// strictly contains the bounds of its descendants. Bounds are maintained here
// and never accepted from callers.
type GormCategoryRepository struct {
	db *gorm.DB
}

// Interface assertion
var _ salla.CategoryRepository = (*GormCategoryRepository)(nil)

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// ByKey finds a category by its key
func (r *GormCategoryRepository) ByKey(ctx context.Context, key string) (*salla.CategoryNode, error) {
	return r.byKey(r.db.WithContext(ctx), key)
}

func (r *GormCategoryRepository) byKey(tx *gorm.DB, key string) (*salla.CategoryNode, error) {
	var model models.CategoryModel
	if err := tx.First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, salla.ErrCategoryNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts a category. New nodes are inserted as the rightmost child of
// their parent, widening every enclosing interval by two. Updates to an
// existing node keep its position unless the parent changed, in which case
// the node must be a leaf and is removed and re-inserted.
func (r *GormCategoryRepository) Save(ctx context.Context, node *salla.CategoryNode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := r.byKey(tx, node.Key)
		switch {
		case errors.Is(err, salla.ErrCategoryNotFound):
			return r.insert(tx, node)
		case err != nil:
			return err
		}

		if existing.ParentKey != node.ParentKey {
			if !existing.IsLeaf() {
				return salla.ErrCategoryInvalidBounds
			}
			if err := r.remove(tx, existing); err != nil {
				return err
			}
			return r.insert(tx, node)
		}

		var model models.CategoryModel
		if err := model.FromDomain(node); err != nil {
			return err
		}
		return tx.Model(&models.CategoryModel{}).
			Where("key = ?", node.Key).
			Updates(map[string]any{
				"translations": model.TranslationsJSON,
				"sync_enabled": model.SyncEnabled,
			}).Error
	})
}

// insert places node at the right edge of its parent's interval, or at the
// right edge of the forest for roots.
func (r *GormCategoryRepository) insert(tx *gorm.DB, node *salla.CategoryNode) error {
	var at int
	if node.ParentKey == "" {
		var maxRgt int
		if err := tx.Model(&models.CategoryModel{}).
			Select("COALESCE(MAX(rgt), 0)").Scan(&maxRgt).Error; err != nil {
			return err
		}
		at = maxRgt + 1
	} else {
		parent, err := r.byKey(tx, node.ParentKey)
		if err != nil {
			return err
		}
		at = parent.Rgt

		if err := tx.Model(&models.CategoryModel{}).
			Where("rgt >= ?", at).
			UpdateColumn("rgt", gorm.Expr("rgt + 2")).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.CategoryModel{}).
			Where("lft > ?", at).
			UpdateColumn("lft", gorm.Expr("lft + 2")).Error; err != nil {
			return err
		}
	}

	var model models.CategoryModel
	if err := model.FromDomain(node); err != nil {
		return err
	}
	model.Lft = at
	model.Rgt = at + 1
	return tx.Create(&model).Error
}

// remove deletes a leaf and closes the two-wide gap it leaves.
func (r *GormCategoryRepository) remove(tx *gorm.DB, node *salla.CategoryNode) error {
	if err := tx.Delete(&models.CategoryModel{}, "key = ?", node.Key).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.CategoryModel{}).
		Where("rgt > ?", node.Rgt).
		UpdateColumn("rgt", gorm.Expr("rgt - 2")).Error; err != nil {
		return err
	}
	return tx.Model(&models.CategoryModel{}).
		Where("lft > ?", node.Rgt).
		UpdateColumn("lft", gorm.Expr("lft - 2")).Error
}

// Ancestors returns the chain of nodes strictly containing the key's
// interval, outermost first.
func (r *GormCategoryRepository) Ancestors(ctx context.Context, key string) ([]*salla.CategoryNode, error) {
	node, err := r.ByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	var nodeModels []models.CategoryModel
	err = r.db.WithContext(ctx).
		Where("lft < ? AND rgt > ?", node.Lft, node.Rgt).
		Order("lft ASC").
		Find(&nodeModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainNodes(nodeModels), nil
}

// Descendants returns every node strictly inside the key's interval, in
// depth-first order.
func (r *GormCategoryRepository) Descendants(ctx context.Context, key string) ([]*salla.CategoryNode, error) {
	node, err := r.ByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	var nodeModels []models.CategoryModel
	err = r.db.WithContext(ctx).
		Where("lft > ? AND rgt < ?", node.Lft, node.Rgt).
		Order("lft ASC").
		Find(&nodeModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainNodes(nodeModels), nil
}

// Roots returns the top-level nodes ordered by position.
func (r *GormCategoryRepository) Roots(ctx context.Context) ([]*salla.CategoryNode, error) {
	var nodeModels []models.CategoryModel
	err := r.db.WithContext(ctx).
		Where("parent_key = ?", "").
		Order("lft ASC").
		Find(&nodeModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainNodes(nodeModels), nil
}

func toDomainNodes(nodeModels []models.CategoryModel) []*salla.CategoryNode {
	nodes := make([]*salla.CategoryNode, len(nodeModels))
	for i := range nodeModels {
		nodes[i] = nodeModels[i].ToDomain()
	}
	return nodes
}
