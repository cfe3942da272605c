package services

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/platform/media"
)

const reaperConcurrency = 4

// assetReaper removes hosted assets on a best-effort basis. A failed remote
// delete is logged and never aborts the caller.
type assetReaper struct {
	host media.Host
	log  *logger.Logger
}

func newAssetReaper(host media.Host, log *logger.Logger) *assetReaper {
	return &assetReaper{host: host, log: log}
}

func (r *assetReaper) deleteOne(ctx context.Context, assetID string, kind media.AssetKind) bool {
	assetID = strings.TrimSpace(assetID)
	if r == nil || r.host == nil || assetID == "" {
		return false
	}
	removed, err := r.host.DeleteAsset(ctx, assetID, kind)
	if err != nil {
		r.log.Warn("remote asset delete failed", "asset_id", assetID, "kind", string(kind), "error", err)
		return false
	}
	if !removed {
		r.log.Debug("remote asset already gone", "asset_id", assetID, "kind", string(kind))
	}
	return removed
}

// deleteResources removes the asset behind every hosted resource. Links and
// resources without an asset id are skipped.
func (r *assetReaper) deleteResources(ctx context.Context, resources []types.Resource) {
	var g errgroup.Group
	g.SetLimit(reaperConcurrency)
	for _, res := range resources {
		if res.Type == types.ResourceLink || strings.TrimSpace(res.AssetID) == "" {
			continue
		}
		assetID, kind := res.AssetID, media.KindForResource(res.Type)
		g.Go(func() error {
			r.deleteOne(ctx, assetID, kind)
			return nil
		})
	}
	_ = g.Wait()
}

// discard removes freshly uploaded assets after a failed persist.
func (r *assetReaper) discard(ctx context.Context, uploaded []types.Resource) {
	if len(uploaded) == 0 {
		return
	}
	r.log.Warn("discarding uploaded assets after failed persist", "count", len(uploaded))
	r.deleteResources(context.WithoutCancel(ctx), uploaded)
}
