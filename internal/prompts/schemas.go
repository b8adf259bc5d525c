package prompts

import "google.golang.org/genai"

// StageCount は題材から提案する舞台の数です。
const StageCount = 6

// StorySchema は物語生成の応答形式です。
func StorySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {Type: genai.TypeString},
			"scenes": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"description":  {Type: genai.TypeString},
						"text":         {Type: genai.TypeString},
						"imagenPrompt": {Type: genai.TypeString},
						"order":        {Type: genai.TypeNumber},
					},
					Required:         []string{"description", "text", "imagenPrompt", "order"},
					PropertyOrdering: []string{"description", "text", "imagenPrompt", "order"},
				},
			},
		},
		Required:         []string{"title", "scenes"},
		PropertyOrdering: []string{"title", "scenes"},
	}
}

// StageSchema は舞台候補の応答形式です。ちょうど StageCount 件を要求します。
func StageSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"stages": {
				Type:     genai.TypeArray,
				Items:    &genai.Schema{Type: genai.TypeString},
				MinItems: genai.Ptr[int64](StageCount),
				MaxItems: genai.Ptr[int64](StageCount),
			},
		},
		Required: []string{"stages"},
	}
}

// SanitizeSchema は画像プロンプト書き換えの応答形式です。
func SanitizeSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"imagen_prompt": {Type: genai.TypeString},
		},
		Required: []string{"imagen_prompt"},
	}
}
