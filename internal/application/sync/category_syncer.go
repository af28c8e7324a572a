package sync

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// CategorySyncer pushes local category nodes and imports the platform's
// category tree. Parents are always synced before children so a child's
// payload can reference its parent's platform id.
type CategorySyncer struct {
	categories salla.CategoryRepository
	links      salla.LinkRepository
	client     salla.Client
	payloads   *CategoryPayloadBuilder
	ops        salla.SyncOperationRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewCategorySyncer creates a new CategorySyncer
func NewCategorySyncer(
	categories salla.CategoryRepository,
	links salla.LinkRepository,
	client salla.Client,
	payloads *CategoryPayloadBuilder,
	ops salla.SyncOperationRepository,
	logger *zap.Logger,
) *CategorySyncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategorySyncer{
		categories: categories,
		links:      links,
		client:     client,
		payloads:   payloads,
		ops:        ops,
		logger:     logger,
		now:        time.Now,
	}
}

// Kind returns the entity kind this syncer handles
func (s *CategorySyncer) Kind() salla.EntityKind {
	return salla.KindCategory
}

// ShouldSync reports whether the node is sync-enabled.
func (s *CategorySyncer) ShouldSync(ctx context.Context, key string) (bool, error) {
	node, err := s.categories.ByKey(ctx, key)
	if err != nil {
		return false, err
	}
	return node.SyncEnabled, nil
}

// Push sends one category node. Unlinked ancestors are pushed first, from
// the root down, so the parent link a payload needs always exists.
func (s *CategorySyncer) Push(ctx context.Context, key string) salla.SyncResult {
	node, err := s.categories.ByKey(ctx, key)
	if err != nil {
		return s.record(ctx, salla.DirectionPush, key, "", salla.FailedWith(err))
	}
	if !node.SyncEnabled {
		return s.record(ctx, salla.DirectionPush, key, "", salla.Skipped("sync disabled for category"))
	}

	ancestors, err := s.categories.Ancestors(ctx, key)
	if err != nil {
		return s.record(ctx, salla.DirectionPush, key, "", salla.FailedWith(err))
	}
	for _, anc := range ancestors {
		if _, err := s.pushOne(ctx, anc); err != nil {
			return s.record(ctx, salla.DirectionPush, key, "",
				salla.Failed("syncing ancestor "+anc.Key+": "+err.Error()))
		}
	}

	remoteID, err := s.pushOne(ctx, node)
	if err != nil {
		return s.record(ctx, salla.DirectionPush, key, "", salla.FailedWith(err))
	}
	return s.record(ctx, salla.DirectionPush, key, remoteID, salla.Success(remoteID))
}

// ImportRemote ingests one remote category and, recursively, its inline
// sub_categories. A node already linked is left untouched and one matched
// by name only gains the link; new nodes are persisted and linked before
// any child, which keeps the parent-before-child ordering during tree
// import.
func (s *CategorySyncer) ImportRemote(ctx context.Context, remote salla.RemoteCategory, parentKey string) (int, error) {
	if remote.Name == "" {
		return 0, nil
	}

	remoteID := strconv.FormatInt(remote.ID, 10)

	key := remote.Name
	link, err := s.links.ByRemote(ctx, salla.KindCategory, remoteID)
	switch {
	case err == nil:
		// Linked, the local node is authoritative; only descend.
		key = link.LocalKey
	case !errors.Is(err, salla.ErrLinkNotFound):
		return 0, err
	default:
		// A node matched by name is bound as-is; only unknown names
		// materialize a local node.
		if _, err := s.categories.ByKey(ctx, key); errors.Is(err, salla.ErrCategoryNotFound) {
			node := &salla.CategoryNode{
				Key:       key,
				ParentKey: parentKey,
				Translations: map[string]salla.CategoryTranslation{
					LocalePrimary: {Name: remote.Name},
				},
				SyncEnabled: remote.Status != statusHidden,
			}
			if err := s.categories.Save(ctx, node); err != nil {
				return 0, err
			}
		} else if err != nil {
			return 0, err
		}
		if err := s.links.Save(ctx, &salla.ExternalLink{
			Kind:      salla.KindCategory,
			LocalKey:  key,
			RemoteID:  remoteID,
			CreatedAt: s.now(),
		}); err != nil {
			return 0, err
		}
	}

	imported := 1
	for _, child := range remote.SubCategories {
		n, err := s.ImportRemote(ctx, child, key)
		if err != nil {
			return imported, err
		}
		imported += n
	}

	s.record(ctx, salla.DirectionPull, key, remoteID, salla.Success(remoteID))
	return imported, nil
}

// pushOne creates or updates a single node and returns its platform id.
// Already linked nodes get an update; new ones are created in the primary
// locale, linked, then given their secondary-locale name.
func (s *CategorySyncer) pushOne(ctx context.Context, node *salla.CategoryNode) (string, error) {
	link, err := s.links.ByLocal(ctx, salla.KindCategory, node.Key)
	if err == nil {
		id, perr := strconv.ParseInt(link.RemoteID, 10, 64)
		if perr != nil {
			return "", perr
		}
		if err := s.updateLocales(ctx, node, id); err != nil {
			return "", err
		}
		return link.RemoteID, nil
	}
	if !errors.Is(err, salla.ErrLinkNotFound) {
		return "", err
	}

	payload, err := s.payloads.Build(ctx, node, LocalePrimary)
	if err != nil {
		return "", err
	}
	created, err := s.client.CreateCategory(ctx, payload, LocalePrimary)
	if err != nil {
		return "", err
	}

	remoteID := strconv.FormatInt(created.ID, 10)
	if err := s.links.Save(ctx, &salla.ExternalLink{
		Kind:      salla.KindCategory,
		LocalKey:  node.Key,
		RemoteID:  remoteID,
		CreatedAt: s.now(),
	}); err != nil {
		return "", err
	}

	if err := s.updateLocale(ctx, node, created.ID, LocaleSecondary); err != nil {
		return "", err
	}
	return remoteID, nil
}

func (s *CategorySyncer) updateLocales(ctx context.Context, node *salla.CategoryNode, remoteID int64) error {
	if err := s.updateLocale(ctx, node, remoteID, LocalePrimary); err != nil {
		return err
	}
	return s.updateLocale(ctx, node, remoteID, LocaleSecondary)
}

func (s *CategorySyncer) updateLocale(ctx context.Context, node *salla.CategoryNode, remoteID int64, locale string) error {
	payload, err := s.payloads.Build(ctx, node, locale)
	if err != nil {
		return err
	}
	if payload.Name != nil && *payload.Name == "" {
		return nil
	}
	_, err = s.client.UpdateCategory(ctx, remoteID, payload, locale)
	return err
}

func (s *CategorySyncer) record(ctx context.Context, dir salla.SyncDirection, key, remoteID string, result salla.SyncResult) salla.SyncResult {
	op := &salla.SyncOperation{
		Kind:      salla.KindCategory,
		Direction: dir,
		LocalKey:  key,
		RemoteID:  remoteID,
		Outcome:   result.Outcome,
		Message:   result.Reason + result.Message,
		CreatedAt: s.now(),
	}
	if err := s.ops.Record(ctx, op); err != nil {
		s.logger.Warn("failed to record sync operation",
			zap.String("category", key), zap.Error(err))
	}
	return result
}

// Ensure CategorySyncer implements EntitySyncManager
var _ salla.EntitySyncManager = (*CategorySyncer)(nil)
