// Package banner renders the startup banner.
package banner

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Logo is the ASCII art logo for Steward
const Logo = `
   ███████╗████████╗███████╗██╗    ██╗ █████╗ ██████╗ ██████╗
   ██╔════╝╚══██╔══╝██╔════╝██║    ██║██╔══██╗██╔══██╗██╔══██╗
   ███████╗   ██║   █████╗  ██║ █╗ ██║███████║██████╔╝██║  ██║
   ╚════██║   ██║   ██╔══╝  ██║███╗██║██╔══██║██╔══██╗██║  ██║
   ███████║   ██║   ███████╗╚███╔███╔╝██║  ██║██║  ██║██████╔╝
   ╚══════╝   ╚═╝   ╚══════╝ ╚══╝╚══╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝
`

// Tagline is the project tagline
const Tagline = "Project Memory At Your Command"

var (
	logoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	taglineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
)

// PrintWithVersion prints the banner with version info
func PrintWithVersion(version string) {
	fmt.Print(logoStyle.Render(Logo))
	fmt.Printf("\n   %s\n", taglineStyle.Render(Tagline))
	fmt.Printf("   %s\n\n", labelStyle.Render("v"+version))
}

// Startup prints the full startup banner for the serve command.
func Startup(version, gatewayAddr, dataPath string, reminders bool) {
	fmt.Print(logoStyle.Render(Logo))
	fmt.Printf("\n   %s\n\n", taglineStyle.Render(Tagline))

	rows := []struct{ label, value string }{
		{"Version", "v" + version},
		{"Gateway", "ws://" + gatewayAddr + "/ws"},
		{"Data", dataPath},
		{"Reminders", onOff(reminders)},
	}
	for _, row := range rows {
		fmt.Printf("   %s  %s\n",
			labelStyle.Render(fmt.Sprintf("%-10s", row.label+":")),
			valueStyle.Render(row.value))
	}
	fmt.Println()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
