package transactions

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	TypeGamePass             = "Game Pass"
	TypeDeveloperProduct     = "Developer Product"
	TypePrivateServerProduct = "Private Server Product"
)

// assetTypes are the catalog asset type names a transaction can carry.
var assetTypes = map[string]bool{}

func init() {
	for _, name := range []string{
		"Image", "TShirt", "Audio", "Mesh", "Lua", "Hat", "Place", "Model",
		"Shirt", "Pants", "Decal", "Head", "Face", "Gear", "Badge",
		"Animation", "Torso", "RightArm", "LeftArm", "LeftLeg", "RightLeg",
		"Package", "GamePass", "Plugin", "MeshPart", "HairAccessory",
		"FaceAccessory", "NeckAccessory", "ShoulderAccessory",
		"FrontAccessory", "BackAccessory", "WaistAccessory",
		"ClimbAnimation", "DeathAnimation", "FallAnimation", "IdleAnimation",
		"JumpAnimation", "RunAnimation", "SwimAnimation", "WalkAnimation",
		"PoseAnimation", "EarAccessory", "EyeAccessory", "EmoteAnimation",
		"Video", "TShirtAccessory", "ShirtAccessory", "PantsAccessory",
		"JacketAccessory", "SweaterAccessory", "ShortsAccessory",
		"LeftShoeAccessory", "RightShoeAccessory", "DressSkirtAccessory",
		"FontFamily", "EyebrowAccessory", "EyelashAccessory",
		"MoodAnimation", "DynamicHead",
	} {
		assetTypes[name] = true
	}
}

var slugSeparators = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// slug turns an item name into the URL segment the site uses.
func slug(name string) string {
	s := strings.Trim(slugSeparators.ReplaceAllString(name, "-"), "-")
	if s == "" {
		return "unnamed"
	}
	return s
}

// CatalogLink is the catalog page of an asset.
func CatalogLink(id int64, name string) string {
	return fmt.Sprintf("https://www.roblox.com/catalog/%d/%s", id, slug(name))
}

// GamePassLink is the store page of a game pass.
func GamePassLink(id int64, name string) string {
	return fmt.Sprintf("https://www.roblox.com/game-pass/%d/%s", id, slug(name))
}

// ItemLink returns the page for the item of t, or "" when its type has none.
func ItemLink(t Transaction) string {
	switch {
	case t.ItemType == TypeGamePass:
		return GamePassLink(t.ItemID, t.ItemName)
	case t.ItemType == TypeDeveloperProduct:
		return fmt.Sprintf("https://create.roblox.com/dashboard/creations/experiences/%d/developer-products/%d/configure",
			t.UniverseID, t.ItemID)
	case t.ItemType == TypePrivateServerProduct:
		return fmt.Sprintf("https://create.roblox.com/dashboard/creations/experiences/%d/overview", t.UniverseID)
	case assetTypes[t.ItemType]:
		return CatalogLink(t.ItemID, t.ItemName)
	default:
		return ""
	}
}
