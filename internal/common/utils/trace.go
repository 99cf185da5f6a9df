package utils

import (
	"context"
	"log"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// BeginSubsegment はX-Rayのサブセグメントを開始し、終了用の関数を返します
// 親セグメントがない場合やSDKが無効な場合は何もしない関数を返します
func BeginSubsegment(ctx context.Context, name string) (context.Context, func(error)) {
	ctx, seg := xray.BeginSubsegment(ctx, name)
	if seg == nil {
		return ctx, func(error) {}
	}
	return ctx, seg.Close
}

// AddMetadata は現在のセグメントにメタデータを追加します
func AddMetadata(ctx context.Context, key string, value interface{}) {
	if xray.GetSegment(ctx) == nil {
		return
	}
	if err := xray.AddMetadata(ctx, key, value); err != nil {
		log.Printf("Failed to add %s metadata: %v", key, err)
	}
}
