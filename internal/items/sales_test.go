package items

import (
	"context"
	"errors"
	"testing"

	"github.com/rplus-dev/rplus/internal/roblox"
	"github.com/rplus-dev/rplus/internal/settings"
)

type fakeAssets struct {
	details *roblox.AssetDetails
	err     error
	calls   int
}

func (f *fakeAssets) GetAssetDetails(ctx context.Context, assetID int64) (*roblox.AssetDetails, error) {
	f.calls++
	return f.details, f.err
}

func ownAsset(sales int64) *roblox.AssetDetails {
	return &roblox.AssetDetails{
		AssetID: 99,
		Sales:   sales,
		Creator: roblox.AssetCreator{CreatorType: "User", CreatorTargetID: 7},
	}
}

func TestSalesStat(t *testing.T) {
	limited := ownAsset(10)
	limited.IsLimitedUnique = true

	group := ownAsset(10)
	group.Creator = roblox.AssetCreator{CreatorType: "Group", CreatorTargetID: 7}

	tests := []struct {
		name     string
		details  *roblox.AssetDetails
		toggle   bool
		expected *Stat
	}{
		{name: "own item", details: ownAsset(1234), toggle: true, expected: &Stat{Label: "Sales", Value: "1,234"}},
		{name: "toggle off", details: ownAsset(1234), toggle: false},
		{name: "limited", details: limited, toggle: true},
		{name: "group item", details: group, toggle: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			prefs := settings.New(settings.NewMemoryStore())
			if err := prefs.Set(ctx, settings.KeyItemSalesCounter, tt.toggle); err != nil {
				t.Fatal(err)
			}
			source := &fakeAssets{details: tt.details}

			stat, err := NewService(source, prefs, 7).SalesStat(ctx, 99)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if (stat == nil) != (tt.expected == nil) || (stat != nil && *stat != *tt.expected) {
				t.Errorf("Expected %+v, got %+v", tt.expected, stat)
			}
			if !tt.toggle && source.calls != 0 {
				t.Error("Disabled toggle should not hit the network")
			}
		})
	}
}

func TestSalesStatErrors(t *testing.T) {
	ctx := context.Background()
	prefs := settings.New(settings.NewMemoryStore())

	if _, err := NewService(&fakeAssets{}, prefs, 7).SalesStat(ctx, 0); !errors.Is(err, ErrInvalidAssetID) {
		t.Errorf("Expected ErrInvalidAssetID, got %v", err)
	}

	siteErr := errors.New("site down")
	if _, err := NewService(&fakeAssets{err: siteErr}, prefs, 7).SalesStat(ctx, 1); !errors.Is(err, siteErr) {
		t.Errorf("Expected wrapped site error, got %v", err)
	}

	stat, err := NewService(&fakeAssets{details: ownAsset(5)}, prefs, 0).SalesStat(ctx, 1)
	if stat != nil || err != nil {
		t.Errorf("Expected no stat without a user, got %+v, %v", stat, err)
	}
}
