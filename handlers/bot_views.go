package handlers

import (
	"fmt"
	"strings"

	"github.com/fenilmodi00/meabot-backend/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data understood by the bot
const (
	cbListExchanges          = "list_exchanges"
	cbListInternships        = "list_internships"
	cbListSummerSchools      = "list_summer_schools"
	cbExchangePrefix         = "exchange_"
	cbInternshipPrefix       = "internship_"
	cbDiscountPrefix         = "discount_"
	cbDiscountCategoryPrefix = "discount_category_"
	cbBackToList             = "go_back_to_list"
	cbBackToExchangeList     = "go_back_to_exchange_list"
	cbBackToInternshipList   = "go_back_to_internship_list"
	cbBackToDiscounts        = "go_back_to_discounts"
)

const (
	welcomeText = "✨ *Welcome to the MEA bot!* ✨\n\n" +
		"Here you can explore:\n" +
		"• Exchange opportunities 🌍\n" +
		"• Internships 💼\n" +
		"• Summer schools ☀️\n" +
		"• Exclusive student discounts 🎉\n\n" +
		"🔹 Type /list to see all opportunities\n" +
		"🔹 /discounts for student discounts\n" +
		"🔹 /help for more info\n" +
		"🔹 /ask to submit questions!\n\n" +
		"Have fun exploring! 🚀"

	helpText = "ℹ️ *Bot Guide*\n\n" +
		"• /list - Explore opportunities (Exchanges, Internships, Summer Schools)\n" +
		"• /discounts - Exclusive student discounts 🎉\n" +
		"• /ask - Submit your question to us\n" +
		"Enjoy our bot! ✨"

	askPromptText = "❓ *Submit Your Question*\n\n" +
		"Please type *your question* about exchanges or *your suggestion* about discounts now.\n" +
		"We'll save it and answer you soon! 📝"

	questionRecordedText = "✅ *Question Recorded!*\n\n" +
		"Thanks for your submission. We'll review and respond soon. ✨\n"

	questionFailedText = "⚠️ Sorry, we couldn't save your question right now. Please try /ask again later."

	fallbackText = "🤔 Not sure what you meant. Try these commands:\n" +
		"• /help - Instructions\n" +
		"• /list - Categories\n" +
		"• /discounts - Student offers\n" +
		"• /ask - Ask a question"

	categoriesText = "📋 *Available Categories:*\n\n" +
		"1) Exchanges 🌍\n" +
		"2) Internships 💼\n" +
		"3) Summer Schools ☀️\n" +
		"4) Student Discounts 🎉\n\n" +
		"Select one below!"

	summerSchoolsText = "☀️ *Summer Schools*\n\n" +
		"_No summer schools available at the moment. Stay tuned!_\n" +
		"Meanwhile, check out other categories or come back soon."

	noExchangesText   = "🚫 No Exchange Opportunities found. Check back soon!"
	noInternshipsText = "💼 *Internships*\n\n" +
		"_No internships available at the moment. Stay tuned!_\n" +
		"Meanwhile, check out other categories or come back soon."
	noDiscountsText = "🎉 *NU Student Discounts*\n\n" +
		"_No student discounts available right now. Check back soon!_"

	unavailableText   = "⚠️ This information is temporarily unavailable. Please try again later."
	invalidSelection  = "⚠️ Invalid selection."
	unknownActionText = "❓ Unknown action. Please go back or try again."
)

// view is a rendered bot screen
type view struct {
	text          string
	markup        *tgbotapi.InlineKeyboardMarkup
	noLinkPreview bool
}

func buttonRow(data, text string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(text, data))
}

func keyboard(rows ...[]tgbotapi.InlineKeyboardButton) *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func plainView(text string) view {
	return view{text: text}
}

func categoriesView() view {
	return view{
		text: categoriesText,
		markup: keyboard(
			buttonRow(cbListExchanges, "🌍 Exchanges"),
			buttonRow(cbListInternships, "💼 Internships"),
			buttonRow(cbListSummerSchools, "☀️ Summer Schools"),
			buttonRow(cbBackToDiscounts, "🎉 Student Discounts"),
		),
	}
}

func summerSchoolsView() view {
	return view{
		text:   summerSchoolsText,
		markup: keyboard(buttonRow(cbBackToList, "« Back to Categories")),
	}
}

func exchangesView(exchanges []models.Exchange) view {
	if len(exchanges) == 0 {
		return view{
			text:   noExchangesText,
			markup: keyboard(buttonRow(cbBackToList, "« Back to Categories")),
		}
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(exchanges)+1)
	for i, e := range exchanges {
		rows = append(rows, buttonRow(fmt.Sprintf("%s%d", cbExchangePrefix, i), "🌍 "+e.ProgramName))
	}
	rows = append(rows, buttonRow(cbBackToList, "« Back to Categories"))

	return view{
		text: "🌍 *Exchange Opportunities:*\n\n" +
			"Below are the available programs. Tap one for more details!\n",
		markup: keyboard(rows...),
	}
}

func exchangeDetailView(e models.Exchange) view {
	period := fmt.Sprintf("%s  →  %s", e.StartReg, e.EndReg)

	var b strings.Builder
	fmt.Fprintf(&b, "🎓 *%s*\n\n", e.ProgramName)
	b.WriteString("🌟 *Program Details:*\n\n")
	fmt.Fprintf(&b, "🏛️ *Partner University:*\n`%s`\n\n", e.PartnerUniversity)
	fmt.Fprintf(&b, "🎯 *Eligibility:*\n`%s`\n\n", e.WhoCanApply)
	fmt.Fprintf(&b, "🗓️ *Registration Period:*\n`%s`\n\n", period)
	fmt.Fprintf(&b, "⏳ *Program Duration:*\n`%s`\n\n", e.Duration)
	fmt.Fprintf(&b, "🌐 *Official Website:* [Visit Site](%s)\n\n", e.Website)
	b.WriteString("_Need more info? Use_ /ask _to contact us!_ 💬")

	return view{
		text:          b.String(),
		markup:        keyboard(buttonRow(cbBackToExchangeList, "« Back to Exchanges List")),
		noLinkPreview: true,
	}
}

func internshipsView(internships []models.Internship) view {
	if len(internships) == 0 {
		return view{
			text:   noInternshipsText,
			markup: keyboard(buttonRow(cbBackToList, "« Back to Categories")),
		}
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(internships)+1)
	for i, in := range internships {
		rows = append(rows, buttonRow(fmt.Sprintf("%s%d", cbInternshipPrefix, i), "💼 "+in.InternshipProgram))
	}
	rows = append(rows, buttonRow(cbBackToList, "« Back to Categories"))

	return view{
		text: "💼 *Internships:*\n\n" +
			"Below are the available internships. Tap one for more details!\n",
		markup: keyboard(rows...),
	}
}

func internshipDetailView(in models.Internship) view {
	var b strings.Builder
	fmt.Fprintf(&b, "💼 *%s*\n\n", in.InternshipProgram)
	fmt.Fprintf(&b, "🧭 *Field / Department:*\n`%s`\n\n", in.FieldDepartment)
	fmt.Fprintf(&b, "⏳ *Duration:*\n`%s`\n\n", in.DurationDetails)
	fmt.Fprintf(&b, "📍 *Location:*\n`%s`\n\n", in.Location)
	fmt.Fprintf(&b, "🗓️ *Application Deadline:*\n`%s`\n\n", in.ApplicationDeadline)
	fmt.Fprintf(&b, "🌐 *Apply:* [Application Link](%s)\n\n", in.ApplicationLink)
	b.WriteString("_Need more info? Use_ /ask _to contact us!_ 💬")

	return view{
		text:          b.String(),
		markup:        keyboard(buttonRow(cbBackToInternshipList, "« Back to Internships List")),
		noLinkPreview: true,
	}
}

// discountsView lists categories in display order. Category buttons carry
// the position in that order.
func discountsView(groups []models.CategoryGroup) view {
	if len(groups) == 0 {
		return view{
			text:   noDiscountsText,
			markup: keyboard(buttonRow(cbBackToList, "« Main Menu")),
		}
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(groups)+1)
	for i, g := range groups {
		label := fmt.Sprintf("🏷️ %s (%d)", g.Label, len(g.Indices))
		rows = append(rows, buttonRow(fmt.Sprintf("%s%d", cbDiscountCategoryPrefix, i), label))
	}
	rows = append(rows, buttonRow(cbBackToList, "« Main Menu"))

	return view{
		text: "🎉 *NU Student Discounts*\n\n" +
			"Select a category to view organizations:\n" +
			"━━━━━━━━━━━━━━━━━━━━━━━━━━\n",
		markup: keyboard(rows...),
	}
}

func discountCategoryView(group models.CategoryGroup, discounts []models.Discount) view {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(group.Indices)+1)
	for _, i := range group.Indices {
		rows = append(rows, buttonRow(fmt.Sprintf("%s%d", cbDiscountPrefix, i), "🏪 "+discounts[i].Organization))
	}
	rows = append(rows, buttonRow(cbBackToDiscounts, "« Back to Discounts"))

	return view{
		text:   fmt.Sprintf("🎉 *%s*\n\nSelect an organization to view details:\n", group.Label),
		markup: keyboard(rows...),
	}
}

func discountDetailView(d models.Discount) view {
	var b strings.Builder
	fmt.Fprintf(&b, "🏢 *%s*\n\n", d.Organization)
	fmt.Fprintf(&b, "💰 *Discount:* `%s`\n\n", d.Discount)
	b.WriteString("📌 *Addresses:*\n")
	for _, address := range d.Addresses {
		fmt.Fprintf(&b, "➖ %s\n", address)
	}
	if d.Details != "" {
		fmt.Fprintf(&b, "\n📝 *Details:*\n`%s`\n", d.Details)
	}
	fmt.Fprintf(&b, "\n📱 *Instagram:* %s\n\n", d.Instagram)
	b.WriteString("_Show student ID to claim!_\n")

	return view{
		text:          b.String(),
		markup:        keyboard(buttonRow(cbBackToDiscounts, "« Back to Discounts")),
		noLinkPreview: true,
	}
}
