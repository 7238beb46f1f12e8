package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rplus-dev/rplus/internal/items"
)

// SalesService computes item sales stats.
type SalesService interface {
	SalesStat(ctx context.Context, assetID int64) (*items.Stat, error)
}

// SalesResponse carries the stat of one asset. Stat is null when the asset
// gets no sales stat.
type SalesResponse struct {
	AssetID int64       `json:"asset_id"`
	Stat    *items.Stat `json:"stat"`
}

// GetAssetSales returns the sales stat of an asset.
//
// GET /api/v1/assets/:id/sales
func GetAssetSales(service SalesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		assetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || assetID <= 0 {
			errorResponse(c, http.StatusBadRequest, "Invalid asset ID", items.ErrInvalidAssetID)
			return
		}

		stat, err := service.SalesStat(c.Request.Context(), assetID)
		if err != nil {
			errorResponse(c, http.StatusBadGateway, "Failed to fetch sale count", err)
			return
		}

		success(c, SalesResponse{AssetID: assetID, Stat: stat})
	}
}
