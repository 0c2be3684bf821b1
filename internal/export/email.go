package export

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/stats"
)

type emailText struct {
	title, period, revenue, guests, tours, hours, records, none, guestUnit string
}

var emailTexts = map[domain.Language]emailText{
	domain.Japanese: {
		title:     "WonderlandJapan ツアー実績レポート",
		period:    "期間",
		revenue:   "売上合計",
		guests:    "ゲスト合計",
		tours:     "ツアー数",
		hours:     "稼働時間",
		records:   "明細",
		none:      "(記録なし)",
		guestUnit: "名",
	},
	domain.English: {
		title:     "WonderlandJapan tour report",
		period:    "Period",
		revenue:   "Total revenue",
		guests:    "Total guests",
		tours:     "Tours",
		hours:     "Hours",
		records:   "Records",
		none:      "(no records)",
		guestUnit: " pax",
	},
}

// Subject returns the mail subject for summary.
func Subject(summary stats.Summary, lang domain.Language) string {
	return fmt.Sprintf("%s %s", emailTexts[lang].title, summary.Period.Label(lang))
}

// ToEmailBody renders a plain-text report: a header, the totals of summary,
// then one line per record in input order.
func ToEmailBody(records []domain.TourRecord, summary stats.Summary, lang domain.Language) string {
	t, ok := emailTexts[lang]
	if !ok {
		t = emailTexts[domain.Japanese]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", t.title)
	fmt.Fprintf(&b, "%s: %s\n\n", t.period, summary.Period.Label(lang))
	fmt.Fprintf(&b, "%s: %s\n", t.revenue, yen(summary.Revenue))
	fmt.Fprintf(&b, "%s: %s%s\n", t.guests, humanize.Comma(int64(summary.Guests)), t.guestUnit)
	fmt.Fprintf(&b, "%s: %d\n", t.tours, summary.Count)
	fmt.Fprintf(&b, "%s: %sh\n\n", t.hours, hours(summary.Hours))

	fmt.Fprintf(&b, "%s\n", t.records)
	if len(records) == 0 {
		fmt.Fprintf(&b, "%s\n", t.none)
	}
	for _, r := range records {
		fmt.Fprintf(&b, "%s  %s  %s  %s  %d%s  %sh\n",
			r.Date, r.Type.Label(lang), r.Guide, yen(r.Revenue), r.Guests, t.guestUnit, hours(r.Duration))
	}
	return b.String()
}

// MailtoURL builds a mailto: URI that opens a composed message.
func MailtoURL(to, subject, body string) string {
	q := url.Values{}
	q.Set("subject", subject)
	q.Set("body", body)
	// Mail clients expect %20 for spaces, not the form encoding's "+".
	return "mailto:" + url.PathEscape(to) + "?" + strings.ReplaceAll(q.Encode(), "+", "%20")
}

func yen(v int64) string {
	return "¥" + humanize.Comma(v)
}

func hours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
