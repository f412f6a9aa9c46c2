package cli

import (
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/chapter-digest/internal/app"
)

func (r *runner) themeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the display theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEnv(cmd, func(env *app.Env) error {
				switch {
				case len(args) == 0:
				case args[0] == "toggle":
					env.Theme.Toggle(cmd.Context())
				default:
					if err := env.Theme.Set(cmd.Context(), app.Theme(args[0])); err != nil {
						return err
					}
				}
				r.printf("Theme: %s\n", env.Theme.Get())
				return nil
			})
		},
	}
}
