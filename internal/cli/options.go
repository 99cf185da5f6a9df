package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uma-arai/sbcntr-roombook/internal/model"
)

func newOptionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "予約フォームで選択できる時刻とリマインダーを表示する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.jsonOutput {
				return writeJSON(cmd, map[string]any{
					"time_slots":     model.TimeSlotOptions(),
					"reminder_leads": model.ReminderLeadOptions(),
					"default_lead":   model.DefaultReminderLeadMinutes,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderOptions())
			return nil
		},
	}
}
