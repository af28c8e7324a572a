package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// ImageReconciler drives a product's remote image set toward its local
// attachment set. The manifest of previously uploaded refs is the only state
// diffed against; the platform is never listed. After every pass the manifest
// is replaced wholesale with what actually succeeded, so an interrupted pass
// keeps its partial progress and the next pass retries only the remainder.
type ImageReconciler struct {
	manifests   salla.ManifestRepository
	attachments salla.AttachmentStore
	client      salla.Client
	logger      *zap.Logger
}

// NewImageReconciler creates a new ImageReconciler
func NewImageReconciler(
	manifests salla.ManifestRepository,
	attachments salla.AttachmentStore,
	client salla.Client,
	logger *zap.Logger,
) *ImageReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageReconciler{
		manifests:   manifests,
		attachments: attachments,
		client:      client,
		logger:      logger,
	}
}

// Reconcile uploads attachments added locally since the last pass and
// deletes platform images whose local ref is gone. A NotFound on delete means
// someone already removed the image on the platform and is treated as done.
// Refs whose bytes cannot be opened are skipped and retried next pass.
func (r *ImageReconciler) Reconcile(ctx context.Context, productCode string, remoteProductID int64, currentRefs []string) error {
	manifest, err := r.manifests.Get(ctx, productCode)
	if err != nil && !errors.Is(err, salla.ErrManifestNotFound) {
		return err
	}

	diff := salla.DiffImages(currentRefs, manifest)
	if diff.Empty() {
		return nil
	}

	next := make(map[string]string, len(diff.Unchanged)+len(diff.Added))
	for ref, id := range diff.Unchanged {
		next[ref] = id
	}

	var firstErr error

	for _, ref := range diff.Added {
		if firstErr != nil {
			break
		}
		data, filename, err := r.attachments.Open(ctx, ref)
		if err != nil {
			r.logger.Warn("skipping unreadable attachment",
				zap.String("product", productCode),
				zap.String("ref", ref),
				zap.Error(err),
			)
			continue
		}
		img, err := r.client.UploadProductImage(ctx, remoteProductID, filename, data)
		if err != nil {
			firstErr = fmt.Errorf("uploading image %s: %w", ref, err)
			break
		}
		next[ref] = strconv.FormatInt(img.ID, 10)
	}

	for ref, remoteID := range diff.Removed {
		id, err := strconv.ParseInt(remoteID, 10, 64)
		if err != nil {
			r.logger.Warn("dropping manifest entry with non-numeric image id",
				zap.String("product", productCode),
				zap.String("ref", ref),
				zap.String("image_id", remoteID),
			)
			continue
		}
		if err := r.client.DeleteProductImage(ctx, id); err != nil {
			if salla.IsNotFound(err) {
				// Already gone on the platform
				continue
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("deleting image %s: %w", ref, err)
			}
			// Keep the entry so the next pass retries the delete
			next[ref] = remoteID
		}
	}

	if err := r.manifests.Replace(ctx, &salla.ImageManifest{
		ProductCode: productCode,
		Entries:     next,
	}); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// CarryForward trims the manifest to refs still present locally without
// touching the platform. Used when image sync is disabled for a product so
// that re-enabling it later does not re-upload images that never left.
func (r *ImageReconciler) CarryForward(ctx context.Context, productCode string, currentRefs []string) error {
	manifest, err := r.manifests.Get(ctx, productCode)
	if err != nil {
		if errors.Is(err, salla.ErrManifestNotFound) {
			return nil
		}
		return err
	}
	if len(manifest.Entries) == 0 {
		return nil
	}

	present := make(map[string]struct{}, len(currentRefs))
	for _, ref := range currentRefs {
		present[ref] = struct{}{}
	}

	next := make(map[string]string, len(manifest.Entries))
	for ref, id := range manifest.Entries {
		if _, ok := present[ref]; ok {
			next[ref] = id
		}
	}
	if len(next) == len(manifest.Entries) {
		return nil
	}

	return r.manifests.Replace(ctx, &salla.ImageManifest{
		ProductCode: productCode,
		Entries:     next,
	})
}
