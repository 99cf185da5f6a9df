package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "テーブルとインデックスを作成する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.db.Migrate(a.ctx); err != nil {
				return fmt.Errorf("migrate failed: %w", err)
			}

			if opts.jsonOutput {
				return writeJSON(cmd, map[string]string{"driver": a.db.Driver, "status": "migrated"})
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("マイグレーションが完了しました")+dimStyle.Render(" ("+a.db.Driver+")"))
			return nil
		},
	}
}
