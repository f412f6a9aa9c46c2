package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/chapter-digest/internal/app"
)

func (r *runner) keyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the Gemini API key",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [api-key]",
		Short: "Store the API key (read from stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			} else {
				fmt.Fprint(r.opts.Err, "Gemini API key: ")
				line, err := r.readLine()
				if err != nil {
					return fmt.Errorf("read key: %w", err)
				}
				key = line
			}

			return r.withEnv(cmd, func(env *app.Env) error {
				if err := env.Credential.Set(cmd.Context(), key); err != nil {
					return err
				}
				r.printf("API key saved.\n")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEnv(cmd, func(env *app.Env) error {
				env.Credential.Clear(cmd.Context())
				r.printf("API key removed.\n")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show whether a key is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEnv(cmd, func(env *app.Env) error {
				key, ok := env.Credential.APIKey()
				if !ok {
					r.printf("No API key configured. Run 'chapterdigest key set'.\n")
					return nil
				}
				r.printf("API key: %s\n", mask(key))
				return nil
			})
		},
	})

	return cmd
}

func mask(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
