package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uma-arai/sbcntr-roombook/internal/model"
)

func newReserveCmd(opts *rootOptions) *cobra.Command {
	var (
		owner     string
		ownerName string
		channel   string
		title     string
		date      string
		start     string
		end       string
		reminder  int
	)

	cmd := &cobra.Command{
		Use:   "reserve",
		Short: "会議室を予約する",
		Long:  "指定した日時で会議室を予約します。日付は 2025/01/15、2025-01-15、1/15 の形式で指定できます。",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := model.Now()

			day, err := model.ParseDate(date, now)
			if err != nil {
				return err
			}
			startTime, err := model.CombineDateClock(day.Format(model.DateLayout), start)
			if err != nil {
				return err
			}
			endTime, err := model.CombineDateClock(day.Format(model.DateLayout), end)
			if err != nil {
				return err
			}
			if ownerName == "" {
				ownerName = owner
			}

			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := a.svc.Create(a.ctx, model.ReservationRequest{
				OwnerID:             owner,
				OwnerName:           ownerName,
				ChannelID:           channel,
				Title:               title,
				StartTime:           startTime,
				EndTime:             endTime,
				ReminderLeadMinutes: reminder,
			}, now)

			var verr *model.ValidationError
			if errors.As(err, &verr) {
				if opts.jsonOutput {
					if jerr := writeJSON(cmd, map[string]any{"errors": verr.ByField()}); jerr != nil {
						return jerr
					}
				} else {
					fmt.Fprint(cmd.OutOrStdout(), renderValidationError(verr))
				}
				return verr
			}
			if err != nil {
				return fmt.Errorf("reserve failed: %w", err)
			}

			if opts.jsonOutput {
				return writeJSON(cmd, created)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderCreated(*created))
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "予約者のユーザーID")
	cmd.Flags().StringVar(&ownerName, "owner-name", "", "予約者の表示名（省略時はユーザーID）")
	cmd.Flags().StringVar(&channel, "channel", "", "リマインダーの通知先チャンネル")
	cmd.Flags().StringVar(&title, "title", "", "ミーティング名")
	cmd.Flags().StringVar(&date, "date", "", "日付")
	cmd.Flags().StringVar(&start, "start", "", "開始時刻 (15:04)")
	cmd.Flags().StringVar(&end, "end", "", "終了時刻 (15:04)")
	cmd.Flags().IntVar(&reminder, "reminder", model.DefaultReminderLeadMinutes, "リマインダーの通知タイミング（開始の何分前か）")
	for _, name := range []string{"owner", "channel", "title", "date", "start", "end"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
