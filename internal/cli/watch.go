package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/chapter-digest/internal/app"
	"github.com/nguyentantai21042004/chapter-digest/internal/summary"
)

func (r *runner) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print changes made by other chapterdigest processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEnv(cmd, func(env *app.Env) error {
				unsubscribe := env.OnSummariesChanged(func(all []summary.Summary) {
					r.printf("Summaries changed (%d stored):\n", len(all))
					r.printTable(all)
				})
				defer unsubscribe()

				stopTheme := env.Theme.Persisted().Subscribe(func(app.Theme) {
					r.printf("Theme changed: %s\n", env.Theme.Get())
				})
				defer stopTheme()

				stopKey := env.Credential.Persisted().Subscribe(func(*string) {
					if _, ok := env.Credential.APIKey(); ok {
						r.printf("API key updated.\n")
					} else {
						r.printf("API key removed.\n")
					}
				})
				defer stopKey()

				r.printf("Watching for changes... press Ctrl+C to stop.\n")
				err := env.Syncer.Run(cmd.Context())
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}
