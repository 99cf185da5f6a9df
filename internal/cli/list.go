package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uma-arai/sbcntr-roombook/internal/model"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [date]",
		Short: "指定日の予約を確認する（省略時は今日）",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := model.Now()
			day := now
			if len(args) == 1 {
				var err error
				if day, err = model.ParseDate(args[0], now); err != nil {
					return err
				}
			}

			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			reservations, err := a.svc.ListForDate(a.ctx, day)
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}

			if opts.jsonOutput {
				return writeJSON(cmd, reservations)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderDay(day, reservations))
			return nil
		},
	}
}

func newMineCmd(opts *rootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "自分のこれからの予約を確認する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			reservations, err := a.svc.ListUpcomingForOwner(a.ctx, owner, model.Now())
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}

			if opts.jsonOutput {
				return writeJSON(cmd, reservations)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderUpcoming(reservations))
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "予約者のユーザーID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
