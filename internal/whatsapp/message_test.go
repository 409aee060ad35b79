package whatsapp

import (
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/akaza50z/libabbitak/internal/cart"
	"github.com/akaza50z/libabbitak/internal/domain"
)

var fixedNow = time.Date(2026, 3, 15, 18, 45, 0, 0, time.UTC)

func testSettings(mode string) domain.Settings {
	return domain.Settings{
		RestaurantName: "لباب بيتك",
		Currency:       "IQD",
		Mode:           mode,
		MessageFooter:  "شكراً لزيارتكم",
	}
}

func fullOrderLines() []cart.Line {
	return []cart.Line{
		{LineID: "l1", ProductID: "A", Name: "تفاح احمر", UnitPrice: 2000, Quantity: 1.5, Notes: "ناضج"},
		{LineID: "l2", ProductID: "B", Name: "موز", UnitPrice: 1750, Quantity: 2},
	}
}

func fullDraft() OrderDraft {
	return OrderDraft{
		Name:           "أحمد",
		Phone:          "07701234567",
		TableOrAddress: "حي الزهور",
		Notes:          "بدون جرس",
	}
}

func TestBuildMessage_GoldenEnglishDigits(t *testing.T) {
	f := NewFormatter(language.English)
	msg := f.BuildMessage(fullOrderLines(), testSettings(domain.ModeDelivery), fullDraft(), fixedNow)

	g := goldie.New(t)
	g.Assert(t, "order_message_en", []byte(msg))
}

func TestBuildMessage_GoldenArabicDigits(t *testing.T) {
	f := NewFormatter(language.MustParse("ar-IQ"))
	msg := f.BuildMessage(fullOrderLines(), testSettings(domain.ModeDelivery), fullDraft(), fixedNow)

	g := goldie.New(t)
	g.Assert(t, "order_message_ar", []byte(msg))
}

func TestBuildMessage_Deterministic(t *testing.T) {
	f := NewFormatter(language.English)
	a := f.BuildMessage(fullOrderLines(), testSettings(domain.ModeDelivery), fullDraft(), fixedNow)
	b := f.BuildMessage(fullOrderLines(), testSettings(domain.ModeDelivery), fullDraft(), fixedNow)
	assert.Equal(t, a, b)
}

func TestBuildMessage_SubtotalSumsIndependentlyRoundedLines(t *testing.T) {
	// Two lines of the same product split by notes: 1000x1.5 and 1000x0.5
	// give line totals 1500 and 500, subtotal 2000, total weight 2.
	f := NewFormatter(language.English)
	lines := []cart.Line{
		{LineID: "l1", ProductID: "A", Name: "لحم", UnitPrice: 1000, Quantity: 1.5, Notes: "مفروم"},
		{LineID: "l2", ProductID: "A", Name: "لحم", UnitPrice: 1000, Quantity: 0.5},
	}

	msg := f.BuildMessage(lines, testSettings(domain.ModeDineIn), OrderDraft{}, fixedNow)

	assert.Contains(t, msg, "= 1,500 IQD")
	assert.Contains(t, msg, "= 500 IQD")
	assert.Contains(t, msg, "*الإجمالي: 2,000 IQD*")
	assert.Contains(t, msg, "الوزن الكلي: 2 كغ")
}

func TestBuildMessage_RoundingDriftIsPreserved(t *testing.T) {
	// Three half-kilo lines at 333 each round to 167 per line, so the
	// message shows 501 even though the exact total is 499.5. That drift is
	// the documented behavior, not a bug to fix here.
	f := NewFormatter(language.English)
	lines := []cart.Line{
		{LineID: "l1", ProductID: "A", Name: "بهارات", UnitPrice: 333, Quantity: 0.5, Notes: "a"},
		{LineID: "l2", ProductID: "A", Name: "بهارات", UnitPrice: 333, Quantity: 0.5, Notes: "b"},
		{LineID: "l3", ProductID: "A", Name: "بهارات", UnitPrice: 333, Quantity: 0.5, Notes: "c"},
	}

	msg := f.BuildMessage(lines, testSettings(domain.ModeDineIn), OrderDraft{}, fixedNow)

	assert.Contains(t, msg, "*الإجمالي: 501 IQD*")
}

func TestBuildMessage_DineInRoutesFieldToTableLine(t *testing.T) {
	// The label is chosen by the store mode, not by how the customer meant
	// the field: dine-in renders the value as a table number.
	f := NewFormatter(language.English)
	draft := OrderDraft{TableOrAddress: "12"}

	msg := f.BuildMessage(fullOrderLines(), testSettings(domain.ModeDineIn), draft, fixedNow)

	assert.Contains(t, msg, "الطاولة: 12")
	assert.NotContains(t, msg, "العنوان:")
}

func TestBuildMessage_DeliveryRoutesFieldToAddressLine(t *testing.T) {
	f := NewFormatter(language.English)
	draft := OrderDraft{TableOrAddress: "حي الزهور"}

	msg := f.BuildMessage(fullOrderLines(), testSettings(domain.ModeDelivery), draft, fixedNow)

	assert.Contains(t, msg, "العنوان: حي الزهور")
	assert.NotContains(t, msg, "الطاولة:")
}

func TestBuildMessage_EmptyDraftSkipsCustomerSection(t *testing.T) {
	f := NewFormatter(language.English)
	msg := f.BuildMessage(fullOrderLines(), testSettings(domain.ModeDineIn), OrderDraft{}, fixedNow)
	assert.NotContains(t, msg, "معلومات العميل")
}

func TestBuildMessage_NoFooterSkipsFooterSection(t *testing.T) {
	f := NewFormatter(language.English)
	settings := testSettings(domain.ModeDineIn)
	settings.MessageFooter = ""

	msg := f.BuildMessage(fullOrderLines(), settings, OrderDraft{}, fixedNow)

	assert.Equal(t, 1, strings.Count(msg, lightRule))
}

func TestBuildMessage_EndsWithConfirmationLine(t *testing.T) {
	f := NewFormatter(language.English)
	msg := f.BuildMessage(fullOrderLines(), testSettings(domain.ModeDelivery), fullDraft(), fixedNow)
	require.True(t, strings.HasSuffix(msg, "يرجى تأكيد الطلب."))
}

func TestQtyString(t *testing.T) {
	assert.Equal(t, "1", qtyString(1))
	assert.Equal(t, "1.5", qtyString(1.5))
	assert.Equal(t, "2", qtyString(2.0))
	assert.Equal(t, "0.5", qtyString(0.5))
}
