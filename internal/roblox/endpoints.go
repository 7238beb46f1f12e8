package roblox

import (
	"context"
	"fmt"
)

// PresenceRecord is one entry of the bulk presence response. PlaceID is zero
// when the site withholds or has no location.
type PresenceRecord struct {
	UserPresenceType int    `json:"userPresenceType"`
	LastLocation     string `json:"lastLocation"`
	PlaceID          int64  `json:"placeId"`
	RootPlaceID      int64  `json:"rootPlaceId"`
	UniverseID       int64  `json:"universeId"`
	UserID           int64  `json:"userId"`
}

type presenceRequest struct {
	UserIDs []int64 `json:"userIds"`
}

type presenceResponse struct {
	UserPresences []PresenceRecord `json:"userPresences"`
}

// GetUserPresences fetches presence for userIDs in a single call. The site
// omits users it knows nothing about; callers decide what absence means.
func (c *Client) GetUserPresences(ctx context.Context, userIDs []int64) ([]PresenceRecord, error) {
	var response presenceResponse
	url := c.config.PresenceURL + "/v1/presence/users"

	if err := c.post(ctx, url, presenceRequest{UserIDs: userIDs}, &response); err != nil {
		return nil, err
	}
	return response.UserPresences, nil
}

type currencyResponse struct {
	Robux int64 `json:"robux"`
}

// GetRobuxBalance returns the Robux balance of userID. Requires a session.
func (c *Client) GetRobuxBalance(ctx context.Context, userID int64) (int64, error) {
	var response currencyResponse
	url := fmt.Sprintf("%s/v1/users/%d/currency", c.config.EconomyURL, userID)

	if err := c.get(ctx, url, &response); err != nil {
		return 0, err
	}
	return response.Robux, nil
}

type countResponse struct {
	Count int64 `json:"count"`
}

// GetFriendRequestCount returns the number of pending friend requests of the
// authenticated user.
func (c *Client) GetFriendRequestCount(ctx context.Context) (int64, error) {
	var response countResponse
	url := c.config.FriendsURL + "/v1/user/friend-requests/count"

	if err := c.get(ctx, url, &response); err != nil {
		return 0, err
	}
	return response.Count, nil
}

// AssetCreator identifies who published an asset.
type AssetCreator struct {
	ID              int64  `json:"Id"`
	Name            string `json:"Name"`
	CreatorType     string `json:"CreatorType"`
	CreatorTargetID int64  `json:"CreatorTargetId"`
}

// AssetDetails is the subset of the asset details response the daemon uses.
type AssetDetails struct {
	AssetID         int64        `json:"AssetId"`
	Name            string       `json:"Name"`
	AssetTypeID     int          `json:"AssetTypeId"`
	Creator         AssetCreator `json:"Creator"`
	Sales           int64        `json:"Sales"`
	IsForSale       bool         `json:"IsForSale"`
	IsLimited       bool         `json:"IsLimited"`
	IsLimitedUnique bool         `json:"IsLimitedUnique"`
}

// CreatedByUser reports whether the asset was published by userID itself
// rather than by a group.
func (a *AssetDetails) CreatedByUser(userID int64) bool {
	return a.Creator.CreatorType == "User" && a.Creator.CreatorTargetID == userID
}

// Limited reports whether the asset is a limited or limited unique item.
func (a *AssetDetails) Limited() bool {
	return a.IsLimited || a.IsLimitedUnique
}

// GetAssetDetails fetches the details of assetID.
func (c *Client) GetAssetDetails(ctx context.Context, assetID int64) (*AssetDetails, error) {
	var details AssetDetails
	url := fmt.Sprintf("%s/v2/assets/%d/details", c.config.EconomyURL, assetID)

	if err := c.get(ctx, url, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// User is the authenticated user as reported by the site.
type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// GetAuthenticatedUser returns the user the session cookie belongs to.
func (c *Client) GetAuthenticatedUser(ctx context.Context) (*User, error) {
	if !c.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	var user User
	url := c.config.UsersURL + "/v1/users/authenticated"

	if err := c.get(ctx, url, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
