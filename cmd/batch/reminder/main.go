package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/uma-arai/sbcntr-roombook/internal/common/config"
	"github.com/uma-arai/sbcntr-roombook/internal/common/utils"
	"github.com/uma-arai/sbcntr-roombook/internal/notifier"
	"github.com/uma-arai/sbcntr-roombook/internal/service/batch"
)

const (
	projectName = "sbcntr-roombook-reminder"
)

func main() {
	// コマンドライン引数のパース
	interval := flag.Duration("interval", 0, "リマインダー処理の実行間隔（省略時はREMINDER_INTERVAL）")
	once := flag.Bool("once", false, "リマインダー処理を1回だけ実行して終了する")
	flag.Parse()

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v\nStack trace:\n%s", err, debug.Stack())
	}
	if err := cfg.ValidateNotifier(); err != nil {
		log.Fatalf("Invalid notifier config: %v", err)
	}
	if *interval > 0 {
		cfg.Reminder.Interval = *interval
	}

	// X-Ray設定
	if cfg.EnableTracing {
		if err := xray.Configure(xray.Config{
			DaemonAddr:     "127.0.0.1:2000", // X-Rayデーモンのアドレス
			ServiceVersion: "1.0.0",
		}); err != nil {
			log.Printf("Failed to configure X-Ray: %v", err)
			// X-Ray設定失敗時はデフォルトの設定を使用
			if configErr := xray.Configure(xray.Config{}); configErr != nil {
				log.Fatalf("Failed to configure default X-Ray settings: %v", configErr)
			}
		}
		os.Setenv("AWS_XRAY_CONTEXT_MISSING", "LOG_ERROR")
	}

	// 通知基盤の初期化
	var n notifier.Notifier
	switch cfg.Notifier {
	case config.NotifierSFN:
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Fatalf("Failed to load AWS config: %v\nStack trace:\n%s", err, debug.Stack())
		}
		n = notifier.NewSFNNotifier(sfn.NewFromConfig(awsCfg), cfg.SFN.StateMachineArn)
	default:
		log.Printf("Using log notifier. Reminders are written to the log only")
		n = notifier.NewLogNotifier(nil)
	}

	// サービスの初期化
	service, err := batch.NewReminderBatchService(cfg, n)
	if err != nil {
		log.Fatalf("Failed to create service: %v\nStack trace:\n%s", err, debug.Stack())
	}
	defer service.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := migrate(ctx, cfg, service); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		service.Close()
		os.Exit(1)
	}

	if *once {
		if err := runOnce(ctx, cfg, service); err != nil {
			log.Printf("Batch process failed: %v\nStack trace:\n%s", err, debug.Stack())
			service.Close()
			os.Exit(1)
		}
		return
	}

	// シグナルハンドリングの設定
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		service.Start(ctx, cfg.Reminder.Interval)
		close(done)
	}()

	// シグナルを受信したら新しい処理を開始せず、実行中の処理の終了を待つ
	sig := <-sigChan
	log.Printf("Received signal: %v", sig)
	cancel()
	<-done
}

func migrate(ctx context.Context, cfg *config.Config, service *batch.ReminderBatchService) error {
	if cfg.EnableTracing {
		var seg *xray.Segment
		ctx, seg = xray.BeginSegment(ctx, projectName)
		defer seg.Close(nil)
	}
	return service.Migrate(ctx)
}

func runOnce(ctx context.Context, cfg *config.Config, service *batch.ReminderBatchService) error {
	if cfg.EnableTracing {
		var seg *xray.Segment
		ctx, seg = xray.BeginSegment(ctx, projectName)
		defer seg.Close(nil)
	}

	var result batch.TickResult
	err := utils.RunWithTimeout(ctx, cfg.Reminder.TickTimeout, func(ctx context.Context) error {
		var err error
		result, err = service.Run(ctx)
		return err
	})
	if err != nil {
		return err
	}
	log.Printf("Batch process completed successfully. Due: %d, Sent: %d, Failed: %d", result.Due, result.Sent, result.Failed)
	return nil
}
