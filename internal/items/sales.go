// Package items derives the extra stats shown on item detail pages.
package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/roblox"
	"github.com/rplus-dev/rplus/internal/settings"
)

// SalesLabel is the label of the sales stat.
const SalesLabel = "Sales"

// ErrInvalidAssetID is returned for asset ids that are not positive.
var ErrInvalidAssetID = errors.New("invalid asset id")

// Stat is one labelled value on an item page.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AssetSource fetches asset details from the site.
type AssetSource interface {
	GetAssetDetails(ctx context.Context, assetID int64) (*roblox.AssetDetails, error)
}

// Service computes item stats for the signed-in user.
type Service struct {
	source   AssetSource
	settings *settings.Settings
	userID   int64
}

// NewService returns a Service for userID. A zero userID never yields stats.
func NewService(source AssetSource, prefs *settings.Settings, userID int64) *Service {
	return &Service{source: source, settings: prefs, userID: userID}
}

// SalesStat returns the sales stat of assetID, or nil when none applies: the
// itemSalesCounter toggle is off, the asset was not created by the user, or
// it is limited.
func (s *Service) SalesStat(ctx context.Context, assetID int64) (*Stat, error) {
	if assetID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAssetID, assetID)
	}
	if s.userID == 0 || !s.settings.Toggle(ctx, settings.KeyItemSalesCounter) {
		return nil, nil
	}

	details, err := s.source.GetAssetDetails(ctx, assetID)
	if err != nil {
		logging.Error("Items: Failed to fetch sale count for asset %d: %v", assetID, err)
		return nil, fmt.Errorf("failed to fetch sale count: %w", err)
	}
	if !details.CreatedByUser(s.userID) || details.Limited() {
		return nil, nil
	}

	return &Stat{Label: SalesLabel, Value: humanize.Comma(details.Sales)}, nil
}
