package cli

import (
	"context"
	"fmt"
)

// exportData writes the wing and step definitions to a JSON file. With no
// argument a dated default file name is used.
func (a *App) exportData(ctx context.Context, args []string) {
	path := a.exporter.DefaultFileName()
	if len(args) > 0 {
		path = args[0]
	}

	if err := a.exporter.SaveToFile(ctx, path); err != nil {
		fmt.Fprintln(a.out, "Export failed:", err)
		return
	}
	fmt.Fprintln(a.out, "Exported to", path)
}
