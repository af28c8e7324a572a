package salla

import "context"

// ---------------------------------------------------------------------------
// Image manifest
// ---------------------------------------------------------------------------

// ImageManifest records, per product, which local attachment refs have been
// uploaded and the platform image id each upload produced. It is the ground
// truth the image diff runs against; the platform is never listed.
type ImageManifest struct {
	ProductCode string
	// Entries maps local attachment ref to platform image id.
	Entries map[string]string
}

// Has reports whether ref is present in the manifest.
func (m *ImageManifest) Has(ref string) bool {
	_, ok := m.Entries[ref]
	return ok
}

// ImageDiff is the three-way partition of a reconciliation run.
type ImageDiff struct {
	// Added are local refs absent from the manifest, to upload.
	Added []string
	// Removed are manifest refs no longer attached locally, to delete
	// remotely. Values are the platform image ids.
	Removed map[string]string
	// Unchanged are refs present on both sides, carried forward untouched.
	Unchanged map[string]string
}

// Empty reports whether the diff requires no remote calls.
func (d ImageDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// DiffImages partitions current local refs against the manifest. Order of
// Added follows currentRefs. A nil manifest is treated as empty, making every
// current ref an addition.
func DiffImages(currentRefs []string, manifest *ImageManifest) ImageDiff {
	diff := ImageDiff{
		Removed:   map[string]string{},
		Unchanged: map[string]string{},
	}
	current := make(map[string]struct{}, len(currentRefs))
	for _, ref := range currentRefs {
		current[ref] = struct{}{}
		if manifest != nil && manifest.Has(ref) {
			diff.Unchanged[ref] = manifest.Entries[ref]
		} else {
			diff.Added = append(diff.Added, ref)
		}
	}
	if manifest != nil {
		for ref, id := range manifest.Entries {
			if _, ok := current[ref]; !ok {
				diff.Removed[ref] = id
			}
		}
	}
	return diff
}

// ManifestRepository persists image manifests. Replace swaps the whole entry
// map in one write.
type ManifestRepository interface {
	Get(ctx context.Context, productCode string) (*ImageManifest, error)
	Replace(ctx context.Context, manifest *ImageManifest) error
}

// AttachmentStore serves the bytes behind a local attachment ref for upload.
type AttachmentStore interface {
	Open(ctx context.Context, ref string) ([]byte, string, error)
}
