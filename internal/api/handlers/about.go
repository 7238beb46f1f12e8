package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AboutTab is one section of the about page.
type AboutTab struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

// AboutTabs lists the about sections in display order. The empty path is
// the landing tab.
var AboutTabs = []AboutTab{
	{Path: "", Label: "About"},
	{Path: "support", Label: "Support"},
	{Path: "privacy-policy", Label: "Privacy Policy"},
	{Path: "terms-of-service", Label: "Terms of Service"},
}

// AboutResponse describes the daemon for about pages.
type AboutResponse struct {
	Name     string     `json:"name"`
	Version  string     `json:"version"`
	Tabs     []AboutTab `json:"tabs"`
	Selected AboutTab   `json:"selected"`
}

// HandleAbout returns the about page metadata. An optional ?tab= selects a
// tab; unknown tabs fall back to the landing tab.
func HandleAbout(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := AboutResponse{
			Name:     "rplus",
			Version:  version,
			Tabs:     AboutTabs,
			Selected: selectTab(c.Query("tab")),
		}
		c.JSON(http.StatusOK, response)
	}
}

func selectTab(path string) AboutTab {
	for _, tab := range AboutTabs {
		if tab.Path == path {
			return tab
		}
	}
	return AboutTabs[0]
}
