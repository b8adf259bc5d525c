package generator

import (
	"context"
	"encoding/base64"

	"picture-book-api/internal/adapters"
)

// AudioGenerator はシーン本文の読み上げ音声を生成します。
// 音声合成は1回のみ呼び出し、再試行しません。
type AudioGenerator struct {
	tts adapters.SpeechSynthesizer
}

func NewAudioGenerator(tts adapters.SpeechSynthesizer) *AudioGenerator {
	return &AudioGenerator{tts: tts}
}

// Generate は text の音声を Base64 文字列で返します。
func (g *AudioGenerator) Generate(ctx context.Context, text string) (string, error) {
	audio, err := g.tts.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(audio), nil
}
