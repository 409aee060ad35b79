package whatsapp

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/akaza50z/libabbitak/internal/cart"
	"github.com/akaza50z/libabbitak/internal/domain"
)

// OrderDraft carries the customer fields collected at checkout. All optional;
// TableOrAddress is routed by the store mode, not by the field itself.
type OrderDraft struct {
	Name           string `json:"customerName,omitempty"`
	Phone          string `json:"customerPhone,omitempty"`
	TableOrAddress string `json:"tableOrAddress,omitempty"`
	Notes          string `json:"orderNotes,omitempty"`
}

const (
	heavyRule = "━━━━━━━━━━━━━━━━━━"
	lightRule = "─────────────────"
)

// Formatter renders order messages with digits and grouping for one locale.
type Formatter struct {
	printer *message.Printer
	arabic  bool
}

func NewFormatter(tag language.Tag) *Formatter {
	script, _ := tag.Script()
	base, _ := tag.Base()
	return &Formatter{
		printer: message.NewPrinter(tag),
		arabic:  base.String() == "ar" || script.String() == "Arab",
	}
}

// BuildMessage renders the cart snapshot, store settings and customer draft
// into the outgoing order text. Pure: identical inputs (including now)
// produce identical output.
//
// Each line total is rounded to the nearest integer independently; the
// message subtotal is the sum of those rounded totals, which can drift a few
// units from the store's exact total when quantities are fractional. That
// mirrors how the merchant has always read these messages, so it stays.
func (f *Formatter) BuildMessage(lines []cart.Line, s domain.Settings, draft OrderDraft, now time.Time) string {
	var b []string
	cur := s.Currency

	// No emojis in the header, they render inconsistently across devices.
	b = append(b,
		"*طلب جديد — "+s.RestaurantName+"*",
		"",
		"التاريخ: "+f.formatDate(now)+"  |  الوقت: "+f.formatTime(now),
		"",
		heavyRule,
		"",
		"*تفاصيل الطلب:*",
		"",
	)

	var subtotal int64
	var totalKg float64
	for i, l := range lines {
		lineTotal := int64(math.Round(float64(l.UnitPrice) * l.Quantity))
		subtotal += lineTotal
		totalKg += l.Quantity

		b = append(b, "  "+f.int(int64(i+1))+". *"+l.Name+"*")
		b = append(b, "     "+qtyString(l.Quantity)+" كغ × "+f.int(l.UnitPrice)+" "+cur+" = "+f.int(lineTotal)+" "+cur)
		if l.Notes != "" {
			b = append(b, "     ملاحظة: _"+l.Notes+"_")
		}
		b = append(b, "")
	}

	b = append(b,
		lightRule,
		"  الوزن الكلي: "+qtyString(totalKg)+" كغ",
		"  *الإجمالي: "+f.int(subtotal)+" "+cur+"*",
		"",
	)

	if draft.TableOrAddress != "" || draft.Name != "" || draft.Phone != "" || draft.Notes != "" {
		b = append(b, heavyRule, "", "*معلومات العميل:*", "")
		if s.Mode == domain.ModeDineIn && draft.TableOrAddress != "" {
			b = append(b, "  الطاولة: "+draft.TableOrAddress)
		}
		if s.Mode == domain.ModeDelivery && draft.TableOrAddress != "" {
			b = append(b, "  العنوان: "+draft.TableOrAddress)
		}
		if draft.Name != "" {
			b = append(b, "  الاسم: "+draft.Name)
		}
		if draft.Phone != "" {
			b = append(b, "  الهاتف: "+draft.Phone)
		}
		if draft.Notes != "" {
			b = append(b, "  ملاحظات: "+draft.Notes)
		}
		b = append(b, "")
	}

	if s.MessageFooter != "" {
		b = append(b, lightRule, "", s.MessageFooter, "")
	}

	b = append(b, "يرجى تأكيد الطلب.")

	return strings.Join(b, "\n")
}

func (f *Formatter) int(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// qtyString renders a quantity as an integer when whole, else with one
// decimal place, always in plain digits.
func qtyString(q float64) string {
	if q == math.Trunc(q) {
		return strconv.FormatFloat(q, 'f', -1, 64)
	}
	return strconv.FormatFloat(q, 'f', 1, 64)
}

func (f *Formatter) formatDate(now time.Time) string {
	d := strconv.Itoa(now.Day()) + "/" + strconv.Itoa(int(now.Month())) + "/" + strconv.Itoa(now.Year())
	if f.arabic {
		return arabicDigits(d)
	}
	return d
}

func (f *Formatter) formatTime(now time.Time) string {
	hour := now.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	t := padTwo(hour) + ":" + padTwo(now.Minute())
	if f.arabic {
		marker := "ص"
		if now.Hour() >= 12 {
			marker = "م"
		}
		return arabicDigits(t) + " " + marker
	}
	if now.Hour() >= 12 {
		return t + " PM"
	}
	return t + " AM"
}

func padTwo(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// arabicDigits maps ASCII digits to Arabic-Indic ones. Dates and times keep
// their separators, so they bypass the grouping printer.
func arabicDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			r = r - '0' + '٠'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
