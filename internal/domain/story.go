package domain

// StoryDocument は生成された絵本一冊分のデータです。
// 全シーンに画像と音声が揃った状態でのみ呼び出し元へ返されます。
type StoryDocument struct {
	Title  string  `json:"title"`
	Scenes []Scene `json:"scenes"`
}

// Scene は絵本の1場面です。
type Scene struct {
	Description  string  `json:"description"`
	Text         string  `json:"text"`
	ImagenPrompt string  `json:"imagenPrompt"`
	Order        float64 `json:"order"`

	// ImageStr は JPEG 画像の Base64 文字列です。
	ImageStr string `json:"imageStr"`
	// AudioStr は合成音声の Base64 文字列です。
	AudioStr string `json:"audioStr"`
}

// StageSuggestions は題材から提案された舞台の一覧です。
type StageSuggestions struct {
	Stages []string `json:"stages"`
}

// IsComplete は全シーンに画像と音声が付与済みかを判定します。
func (d *StoryDocument) IsComplete() bool {
	if d == nil {
		return false
	}
	for _, s := range d.Scenes {
		if s.ImageStr == "" || s.AudioStr == "" {
			return false
		}
	}
	return true
}
