// Package utils contains utility functions for the rplus daemon.
package utils

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var logoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00A2FF")).Bold(true)

// DisplayLogo prints the rplus ASCII logo with version information
func DisplayLogo(version string) {
	fmt.Println()
	fmt.Println(logoStyle.Render(` ░░░░░░░░░░░░░░░░░░░░░░
 ░█▀▄░█▀█░█░░░█░█░█▀▀░
 ░█▀▄░█▀▀░█░░░█░█░▀▀█░
 ░▀░▀░▀░░░▀▀▀░▀▀▀░▀▀▀░
 ░░░░░░░░░░░░░░░░░░░░░░`))
	fmt.Printf("\n rplus v%s - Roblox+ companion daemon\n", version)
	fmt.Println(" Presence, navbar counters and settings over a local API")
	fmt.Println()
}
