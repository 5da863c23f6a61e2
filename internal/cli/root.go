package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cf0/internal/logging"
	"cf0/internal/store"
	"cf0/internal/tui"
)

type App struct {
	Dir        string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "cf0",
		Short:        "cf0 terminal spreadsheet",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the last-used workbook in the interactive grid
  cf0

  # Scriptable commands
  cf0 workbooks list
  cf0 eval --workbook wb-id '=SUM(A1:A10)'
  cf0 export --workbook wb-id out.xlsx
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("CF0_DIR", ""), "Path to data dir (default ~/.cf0; for fixtures/tests)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newWorkbooksCmd(app))
	cmd.AddCommand(newEvalCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(app *App) error {
	s, err := loadStore(app)
	if err != nil {
		return err
	}
	log := logging.NewOrNop(s.Dir)
	defer log.Sync()
	return tui.Run(s, log)
}

func loadStore(app *App) (store.Store, error) {
	dir := app.Dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return store.Store{}, err
		}
		dir = d
		app.Dir = d
	}
	s := store.Store{Dir: dir}
	if err := s.Ensure(); err != nil {
		return s, err
	}
	return s, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// writeOut prints the command result as a JSON envelope under "data".
func writeOut(cmd *cobra.Command, app *App, v any) error {
	payload := map[string]any{"data": v}
	var b []byte
	var err error
	if app.PrettyJSON {
		b, err = json.MarshalIndent(payload, "", "  ")
	} else {
		b, err = json.Marshal(payload)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
