package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/uma-arai/sbcntr-roombook/internal/model"
)

func newCancelCmd(opts *rootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "自分の予約をキャンセルする",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid reservation id %q", args[0])
			}

			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			cancelled, err := a.svc.Cancel(a.ctx, id, owner)
			if errors.Is(err, model.ErrNotFound) {
				if !opts.jsonOutput {
					fmt.Fprintln(cmd.OutOrStdout(), failStyle.Render("キャンセルできる予約がありません。"))
				}
				return err
			}
			if err != nil {
				return fmt.Errorf("cancel failed: %w", err)
			}

			if opts.jsonOutput {
				return writeJSON(cmd, cancelled)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderCancelled(*cancelled, owner))
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "予約者のユーザーID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
