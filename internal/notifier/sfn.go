package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"github.com/uma-arai/sbcntr-roombook/internal/common/utils"
	"github.com/uma-arai/sbcntr-roombook/internal/model"
)

// StartExecutionAPI はSFNNotifierが利用するStep Functionsの操作です
// *sfn.Clientが実装しています
type StartExecutionAPI interface {
	StartExecution(ctx context.Context, params *sfn.StartExecutionInput, optFns ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error)
}

// SFNNotifier はリマインダー通知をStep Functionsの実行として受け渡します
// 実際のチャンネルへの投稿はステートマシン側で行います
type SFNNotifier struct {
	client          StartExecutionAPI
	stateMachineArn string
}

// NewSFNNotifier は新しいSFNNotifierを作成します
func NewSFNNotifier(client StartExecutionAPI, stateMachineArn string) *SFNNotifier {
	return &SFNNotifier{
		client:          client,
		stateMachineArn: stateMachineArn,
	}
}

func (n *SFNNotifier) Notify(ctx context.Context, notification model.ReminderNotification) (err error) {
	ctx, end := utils.BeginSubsegment(ctx, "SFNNotifier.Notify")
	defer func() { end(err) }()

	if n.client == nil {
		return fmt.Errorf("sfnClient is not initialized")
	}

	input, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	// 同じ予約のリマインダーは同じ実行名になるため、Step Functions側で二重に実行されない
	out, err := n.client.StartExecution(ctx, &sfn.StartExecutionInput{
		StateMachineArn: aws.String(n.stateMachineArn),
		Name:            aws.String(ExecutionName(notification)),
		Input:           aws.String(string(input)),
	})
	var exists *types.ExecutionAlreadyExists
	if errors.As(err, &exists) {
		// 前回の受け渡しは成功しているがフラグの更新に失敗していた場合
		log.Printf("Execution for reservation %d already exists: %v", notification.Reservation.ID, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to start execution: %w", err)
	}

	log.Printf("Started execution %s for reservation %d", aws.ToString(out.ExecutionArn), notification.Reservation.ID)
	return nil
}

// ExecutionName は通知に対応するStep Functionsの実行名を返します
func ExecutionName(notification model.ReminderNotification) string {
	return fmt.Sprintf("%s-%d", notification.Type, notification.Reservation.ID)
}
