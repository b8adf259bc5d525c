package prompts

import (
	_ "embed"
	"strconv"

	"picture-book-api/internal/domain"
)

const (
	ModeMainTheme     = "main_theme"
	ModeStoryParent   = "story_parent"
	ModeStoryChild    = "story_child"
	ModeSanitizeImage = "sanitize_image_prompt"
)

// TemplateData はプロンプトテンプレートに渡すデータ構造です。
// モードごとに使われる項目は異なります。
type TemplateData struct {
	MainTheme string

	Subject         string
	Stage           string
	Genres          string
	ProtagonistType string
	ProtagonistName string
	TargetAge       string
	WordCount       string
	TextStyle       string
	Purpose         string

	ImagenPrompt string
}

// ParentStoryData は保護者向けリクエストからテンプレートデータを作成します。
// 未指定項目は事前に WithDefaults で補われている前提です。
func ParentStoryData(req domain.ParentStoryRequest) TemplateData {
	return TemplateData{
		Subject:         req.Subject,
		Stage:           req.Stage,
		Genres:          req.Genres.Join(),
		ProtagonistType: req.ProtagonistType,
		ProtagonistName: req.ProtagonistName,
		TargetAge:       string(req.TargetAge),
		WordCount:       strconv.Itoa(req.Duration.WordCount()),
		TextStyle:       req.TextStyle,
		Purpose:         req.Purpose,
	}
}

// ChildStoryData は子供向けリクエストからテンプレートデータを作成します。
func ChildStoryData(req domain.ChildStoryRequest) TemplateData {
	return TemplateData{
		Genres:    req.Genres.Join(),
		TargetAge: string(req.TargetAge),
		WordCount: strconv.Itoa(req.Duration.WordCount()),
		TextStyle: req.TextStyle,
		Purpose:   req.Purpose,
	}
}

var (
	//go:embed main_theme.md
	MainThemePrompt string
	//go:embed story_parent.md
	StoryParentPrompt string
	//go:embed story_child.md
	StoryChildPrompt string
	//go:embed sanitize_image_prompt.md
	SanitizeImagePrompt string

	// illustrationCriteria は物語テンプレートで共有する挿絵の指定です。
	//go:embed illustration_criteria.md
	illustrationCriteria string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップです。
var allTemplates = map[string]string{
	ModeMainTheme:     MainThemePrompt,
	ModeStoryParent:   StoryParentPrompt,
	ModeStoryChild:    StoryChildPrompt,
	ModeSanitizeImage: SanitizeImagePrompt,
}
