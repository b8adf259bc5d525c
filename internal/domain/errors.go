package domain

import "errors"

var (
	// ErrRateLimited は生成APIがリソース枯渇 (HTTP 429) を返したことを示します。
	ErrRateLimited = errors.New("rate limited")

	// ErrSafetyRejected は画像生成APIが画像を返さなかった（セーフティフィルタによる除外）ことを示します。
	ErrSafetyRejected = errors.New("image rejected by safety filter")

	// ErrExhaustedRetries は最大試行回数を超過したことを示します。
	// 元のエラーはラップしないため、errors.Is で上流の失敗と区別できます。
	ErrExhaustedRetries = errors.New("maximum attempts exceeded")
)
