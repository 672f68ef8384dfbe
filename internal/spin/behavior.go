package spin

import (
	"regexp"
	"strings"

	"chat-insights-go/internal/types"
)

var (
	reQuestionWord = regexp.MustCompile(`(?i)(^|\s)(что|как|какой|какая|какие|сколько|когда|куда|зачем|почему)`)
	reIntent       = regexp.MustCompile(`(?i)(цена|стоимост|сколько|налич|размер|доставк|оплат|адрес|заказ|оформ|хочу|купить)`)
	reUpsell       = regexp.MustCompile(`(?i)(в комплект|набор|дополнит|к этому|ещё можно|еще можно|рекомендую|возьмите|возьми|акци|скидк|подарок)`)
	reNextStep     = regexp.MustCompile(`(?i)(оформим|оформляю|заказ|доставка|адрес|самовывоз|оплат|ссылк|подтвердите|куда отправить|какой размер|какая модель)`)
)

// countQuestions counts '?' plus a bonus hit when a question word opens a
// phrase, so "Какой размер нужен" without punctuation still registers.
func countQuestions(text string) int {
	if text == "" {
		return 0
	}
	q := strings.Count(text, "?")
	if reQuestionWord.MatchString(text) {
		q++
	}
	return q
}

// ChatBehavior captures the coaching-oriented signals of one conversation.
type ChatBehavior struct {
	ChatID string

	Questions  int  // total manager questions
	NextStep   bool // last outbound proposes a concrete next step
	Upsell     bool // any outbound offers an add-on/bundle/promo
	HighIntent bool // customer asks price/stock/delivery/order

	// FollowUpGap: the customer wrote last and no manager message follows.
	FollowUpGap bool
}

// AnalyzeBehavior derives the behavior signals of one conversation.
// Messages are expected in sent order.
func AnalyzeBehavior(conv types.Conversation) ChatBehavior {
	b := ChatBehavior{ChatID: conv.ID}

	lastInboundIdx := -1
	var lastOut string
	for i, m := range conv.Messages {
		switch m.Direction {
		case types.DirectionOut:
			if textish(m) && m.Text != "" {
				b.Questions += countQuestions(m.Text)
				lastOut = m.Text
				if reUpsell.MatchString(m.Text) {
					b.Upsell = true
				}
			}
		case types.DirectionIn:
			lastInboundIdx = i
			if m.Text != "" && reIntent.MatchString(m.Text) {
				b.HighIntent = true
			}
		}
	}

	b.NextStep = lastOut != "" && reNextStep.MatchString(lastOut)

	if lastInboundIdx >= 0 {
		b.FollowUpGap = true
		for _, m := range conv.Messages[lastInboundIdx+1:] {
			if m.Direction == types.DirectionOut {
				b.FollowUpGap = false
				break
			}
		}
	}
	return b
}
