package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout は処理がタイムアウト時間内に終わらなかったことを表します
var ErrTimeout = errors.New("process timed out")

// 指定されたタイムアウト時間内で処理を実行する
// タイムアウトを超えた場合は、コンテキストをキャンセルしfnが戻るのを待ってからErrTimeoutを返す
// fnはコンテキストの終了に従う必要がある
// fnの中で発生したpanicは回収し、スタックトレース付きのエラーとして返す
func RunWithTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	// タイムアウト付きのコンテキストを作成
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// エラーチャネルを作成
	errChan := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errChan <- GetStackWithError(fmt.Errorf("panic: %v", r))
			}
		}()
		errChan <- fn(ctx)
	}()

	// 処理の完了またはタイムアウトを待機
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		// fnが使っているセグメントやDB接続を後続の処理と共有しないよう終了を待つ
		<-errChan
		return fmt.Errorf("%w after %v: %w", ErrTimeout, timeout, ctx.Err())
	}
}
