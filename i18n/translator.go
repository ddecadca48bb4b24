package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional parameters to embed in the message (for example,
// "count", "names", "name" or "cause").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator. Templates use
// {key} placeholders; a template ending in {cause?} renders " (<cause>)" only
// when a cause is supplied.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"not_array":            "is not an array",
		"not_object":           "is not a valid object",
		"not_string":           "is not a string",
		"invalid_value":        "invalid value{cause?}",
		"missing_fields":       "is missing {count} field(s) ({names})",
		"undeclared_fields":    "contains {count} undeclared field(s) ({names})",
		"union_null":           "is null",
		"union_key_count":      "has {count} keys ({names})",
		"union_unknown_branch": "contains an unknown branch ({name})",
		"union_no_branch":      "is not a valid branch",
		"union_default_null":   "does not match first (null)",
		"logical_encode":       "logical type encoding failed{cause?}",
		"logical_decode":       "logical type decoding failed{cause?}",
		"duplicate_key":        "duplicate key",
		"parse_error":          "parse error{cause?}",
		"truncated":            "truncated",
	},
	"ja": {
		"not_array":            "配列ではありません",
		"not_object":           "有効なオブジェクトではありません",
		"not_string":           "文字列ではありません",
		"invalid_value":        "値が不正です{cause?}",
		"missing_fields":       "{count} 個のフィールドが不足しています ({names})",
		"undeclared_fields":    "未宣言のフィールドが {count} 個あります ({names})",
		"union_null":           "null です",
		"union_key_count":      "キーが {count} 個あります ({names})",
		"union_unknown_branch": "未知のブランチを含みます ({name})",
		"union_no_branch":      "どのブランチにも一致しません",
		"union_default_null":   "先頭のブランチ (null) に一致しません",
		"logical_encode":       "論理型のエンコードに失敗しました{cause?}",
		"logical_decode":       "論理型のデコードに失敗しました{cause?}",
		"duplicate_key":        "キーが重複しています",
		"parse_error":          "解析エラー{cause?}",
		"truncated":            "打ち切られました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	return render(tmpl, data)
}

func render(tmpl string, data map[string]string) string {
	cause := ""
	if c := data["cause"]; c != "" {
		cause = " (" + c + ")"
	}
	pairs := []string{"{cause?}", cause}
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
