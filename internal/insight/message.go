package insight

import (
	"errors"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

var messages = map[domain.InsightKind][2]string{
	domain.InsightNoData: {
		"分析するデータがありません。先に記録を入力してください。",
		"No data to analyze. Please add some records first.",
	},
	domain.InsightMissingCredentials: {
		"APIキーが設定されていません。GEMINI_API_KEY を設定して再起動してください。",
		"API key not configured. Set GEMINI_API_KEY and restart.",
	},
	domain.InsightInvalidCredentials: {
		"APIキーが無効です。",
		"Invalid API key.",
	},
	domain.InsightQuotaExceeded: {
		"APIの利用制限に達しました。しばらくしてから再試行してください。",
		"API quota exceeded. Please try again later.",
	},
	domain.InsightTransient: {
		"診断結果の生成に失敗しました。しばらくしてから再試行してください。",
		"Failed to generate insight. Please try again later.",
	},
}

// UserMessage returns the localized text shown in place of an insight when
// err prevented one. Errors that are not InsightErrors read as transient.
func UserMessage(err error, lang domain.Language) string {
	kind := domain.InsightTransient
	var ie *domain.InsightError
	if errors.As(err, &ie) {
		kind = ie.Kind
	}
	m, ok := messages[kind]
	if !ok {
		m = messages[domain.InsightTransient]
	}
	if lang == domain.English {
		return m[1]
	}
	return m[0]
}
