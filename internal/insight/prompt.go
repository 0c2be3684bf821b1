package insight

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

// MaxPromptRecords caps how many records are sent to the model.
const MaxPromptRecords = 60

const systemInstruction = "You are the strategy officer of WonderlandJapan, a tour operator in Kyoto and Osaka. " +
	"Your goal is to maximize tour profitability and guide efficiency."

// promptRecord is the compact per-record form embedded in the prompt.
type promptRecord struct {
	Date   string  `json:"d"`
	Type   string  `json:"type"`
	Rev    int64   `json:"rev"`
	Pax    int     `json:"pax"`
	Guide  string  `json:"guide"`
	Length float64 `json:"hrs"`
}

// BuildPrompt renders the analysis request for the first MaxPromptRecords
// records, asking for an answer in lang.
func BuildPrompt(records []domain.TourRecord, lang domain.Language) string {
	if len(records) > MaxPromptRecords {
		records = records[:MaxPromptRecords]
	}
	rows := make([]promptRecord, 0, len(records))
	for _, r := range records {
		rows = append(rows, promptRecord{
			Date:   r.Date,
			Type:   r.Type.String(),
			Rev:    r.Revenue,
			Pax:    r.Guests,
			Guide:  r.Guide,
			Length: r.Duration,
		})
	}
	data, _ := json.Marshal(rows)

	answerIn := "Japanese"
	if lang == domain.English {
		answerIn = "English"
	}

	return fmt.Sprintf(`Analyze the following WonderlandJapan tour records (compact JSON) and write a strategic report in %s.

%s

Tour types: Gion walking, Arashiyama walking, Kyoto food, Osaka food and free tours. Revenue is in yen.

Cover:
1. Performance review: which tour type or guide generates the most value?
2. Efficiency: average revenue per guest and group size trends.
3. Actions: how to tune the schedule or pricing given this data.

Use Markdown. Keep it professional and concise.`, answerIn, data)
}
