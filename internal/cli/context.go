// Package cli provides the command-line interface for the socialmeter application.
package cli

import (
	"github.com/meterkit/socialmeter/internal/app"
	"github.com/spf13/cobra"
)

// SetApp stores the Application so commands can access it
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	globalApp = a
}

// GetAppFromCmd retrieves the Application for a command
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	return globalApp
}

// Global reference - temporary until full context passing is implemented
var globalApp *app.Application
