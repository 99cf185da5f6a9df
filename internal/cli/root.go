package cli

import "github.com/spf13/cobra"

var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	dbPath     string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "roomctl",
		Short:         "会議室予約の管理ツール",
		Long:          "会議室の予約の作成・確認・キャンセルを行います。リマインダーの送信は reminder バッチが担当します。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLiteのデータベースファイル（DATABASE_PATHより優先）")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "JSONで出力する")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newReserveCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newMineCmd(opts))
	cmd.AddCommand(newCancelCmd(opts))
	cmd.AddCommand(newOptionsCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
