package main

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/labstack/echo/v4"
	"github.com/reelhub/backend/internal/middleware"
	"github.com/reelhub/backend/internal/router"
	"github.com/reelhub/backend/pkg/logger"
	"github.com/spf13/cobra"
)

func newRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the HTTP routes the server exposes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Handlers are only registered, never called.
			e := echo.New()
			router.SetupRoutes(e, router.Dependencies{
				RequireAuth: middleware.JWTAuthMiddleware(""),
				Log:         logger.Discard(),
			})
			fmt.Fprintln(cmd.OutOrStdout(), renderRoutes(e.Routes()))
			return nil
		},
	}
}

func renderRoutes(routes []*echo.Route) string {
	sorted := append([]*echo.Route(nil), routes...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Method < sorted[j].Method
	})

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Method", "Path", "Handler"})
	for _, r := range sorted {
		tw.AppendRow(table.Row{r.Method, r.Path, r.Name})
	}
	return tw.Render()
}
