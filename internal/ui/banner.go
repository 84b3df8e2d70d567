package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var bannerArt = `
  ┌┬┐┌─┐┌─┐┌┬┐┌─┐┬  ┌─┐
  │││├─┤│  ││││ ││  ├┤
  ┴ ┴┴ ┴└─┘┴ ┴└─┘┴─┘└─┘`

// Banner prints the application banner with a tagline.
func Banner(version string) {
	art := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Render(bannerArt)
	tag := DimStyle.Render(fmt.Sprintf("  Reclaim your storage  %s  v%s", IconDiamond, version))
	fmt.Println(art)
	fmt.Println(tag)
	fmt.Println()
}
