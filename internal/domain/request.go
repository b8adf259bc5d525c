package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// WordsPerMinute は読み聞かせ1分あたりの目安文字数です。
	WordsPerMinute = 400

	defaultRandom          = "ランダム"
	defaultProtagonistType = "動物"
	defaultChildGenre      = "動物"
	defaultTargetAge       = "5"
	defaultDuration        = 3
	maxDuration            = 60
	defaultTextStyle       = "ひらがな"
	defaultPurpose         = "道徳や教訓を学ぶため"
)

// ThemeRequest は select-main-theme の入力です。
type ThemeRequest struct {
	MainTheme string `json:"mainTheme"`
}

// ParentStoryRequest は保護者向け画面 (generate-story-parent) の入力です。
type ParentStoryRequest struct {
	Subject         string     `json:"subject"`
	Stage           string     `json:"stage"`
	Genres          StringList `json:"genres"`
	ProtagonistType string     `json:"protagonistType"`
	ProtagonistName string     `json:"protagonistName"`
	TargetAge       FlexString `json:"targetAge"`
	Duration        Duration   `json:"duration"`
	TextStyle       string     `json:"textStyle"`
	Purpose         string     `json:"purpose"`
}

// WithDefaults は未指定の項目にデフォルト値を補ったコピーを返します。
func (r ParentStoryRequest) WithDefaults() ParentStoryRequest {
	r.Subject = orDefault(r.Subject, defaultRandom)
	r.Stage = orDefault(r.Stage, defaultRandom)
	if len(r.Genres) == 0 {
		r.Genres = StringList{defaultRandom}
	}
	r.ProtagonistType = orDefault(r.ProtagonistType, defaultProtagonistType)
	r.ProtagonistName = orDefault(r.ProtagonistName, defaultRandom)
	r.TargetAge = FlexString(orDefault(string(r.TargetAge), defaultTargetAge))
	if r.Duration <= 0 {
		r.Duration = defaultDuration
	}
	r.TextStyle = orDefault(r.TextStyle, defaultTextStyle)
	r.Purpose = orDefault(r.Purpose, defaultPurpose)
	return r
}

// ChildStoryRequest は子供向け画面 (generate-story-child) の入力です。
type ChildStoryRequest struct {
	Genres    StringList `json:"genres"`
	TargetAge FlexString `json:"targetAge"`
	Duration  Duration   `json:"duration"`
	TextStyle string     `json:"textStyle"`
	Purpose   string     `json:"purpose"`
}

// WithDefaults は未指定の項目にデフォルト値を補ったコピーを返します。
func (r ChildStoryRequest) WithDefaults() ChildStoryRequest {
	if len(r.Genres) == 0 {
		r.Genres = StringList{defaultChildGenre}
	}
	r.TargetAge = FlexString(orDefault(string(r.TargetAge), defaultTargetAge))
	if r.Duration <= 0 {
		r.Duration = defaultDuration
	}
	r.TextStyle = orDefault(r.TextStyle, defaultTextStyle)
	r.Purpose = orDefault(r.Purpose, defaultPurpose)
	return r
}

// Duration は読み聞かせの長さ（分）です。JSON の数値と数値文字列の両方を受け付けます。
// 0.5 のような小数も指定できます。
type Duration float64

// WordCount は物語全体の目標文字数を返します。
func (d Duration) WordCount() int {
	return int(math.Round(float64(d) * WordsPerMinute))
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*d = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("duration must be a number: %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > maxDuration {
		return fmt.Errorf("duration must be between 0 and %d minutes: %q", maxDuration, s)
	}
	*d = Duration(f)
	return nil
}

// FlexString は文字列と数値のどちらで送られても文字列として保持します。
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// StringList は文字列の配列、または単一の文字列を受け付けます。
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*l = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = StringList{s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("expected string list: %w", err)
	}
	*l = items
	return nil
}

// Join はカンマ区切りで連結します。
func (l StringList) Join() string {
	return strings.Join(l, ",")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
