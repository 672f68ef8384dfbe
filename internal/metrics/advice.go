package metrics

import (
	"regexp"
	"strings"

	"chat-insights-go/internal/types"
)

// Keyword heuristics over the customer's language. Go's \b is ASCII-only, so
// the Cyrillic patterns rely on plain alternation instead of word boundaries.
var (
	reHasQuestion = regexp.MustCompile(`(?i)(^|\s)(что|как|какой|какая|какие|сколько|когда|куда|где|зачем|почему)`)
	rePriceIntent = regexp.MustCompile(`(?i)(цена|сколько стоит|прайс|стоимость)`)
	reBuyIntent   = regexp.MustCompile(`(?i)(хочу|купить|куплю|закажу|заказать|оформить|оформляем)`)
	reAvailIntent = regexp.MustCompile(`(?i)(наличие|наличии|в наличии|есть ли)`)
	reNextStep    = regexp.MustCompile(`(?i)(оформим|оформляю|ссылка|корзина|корзину|оплата|оплатить|доставка|самовывоз|подтвердите)`)
)

func hasQuestion(text string) bool {
	return strings.Contains(text, "?") || reHasQuestion.MatchString(text)
}

func hasPurchaseIntent(text string) bool {
	return rePriceIntent.MatchString(text) || reBuyIntent.MatchString(text) || reAvailIntent.MatchString(text)
}

// adviceContext is everything a rule may look at: computed metrics plus the
// opening message texts of both sides.
type adviceContext struct {
	metrics      ChatMetrics
	slowReplySec int
	inboundText  string
	outboundText string
}

type adviceRule struct {
	name    string
	applies func(adviceContext) bool
	message string
}

// Ordered rule list; rules fire independently and order only affects the
// position in the advice list, never inclusion.
var adviceRules = []adviceRule{
	{
		name: "no_manager_reply",
		applies: func(c adviceContext) bool {
			return c.metrics.InboundCount > 0 && c.metrics.OutboundCount == 0
		},
		message: "No manager reply to inbound messages — check assignment/notifications and give a fast first answer.",
	},
	{
		name: "slow_first_reply",
		applies: func(c adviceContext) bool {
			return c.metrics.SlowFirstReply(c.slowReplySec)
		},
		message: "Slow first reply — cut reaction time (target: under 10 minutes) and use a quick greeting-plus-question template.",
	},
	{
		name: "unanswered_inbound",
		applies: func(c adviceContext) bool {
			return c.metrics.UnansweredInbound > 0
		},
		message: "Unanswered inbound messages — follow up and log the next step (link/checkout/options).",
	},
	{
		name: "no_clarifying_questions",
		applies: func(c adviceContext) bool {
			return c.metrics.InboundCount > 0 && c.metrics.OutboundCount > 0 && !hasQuestion(c.outboundText)
		},
		message: "Few clarifying questions — add one or two questions about needs/parameters before the final offer.",
	},
	{
		name: "intent_without_next_step",
		applies: func(c adviceContext) bool {
			return c.metrics.InboundCount > 0 && c.metrics.OutboundCount > 0 &&
				hasPurchaseIntent(c.inboundText) && !reNextStep.MatchString(c.outboundText)
		},
		message: "Customer shows intent (price/stock/want) but there is no explicit next step — offer an option and close with an action: link/checkout/delivery/payment.",
	},
}

// adviceTextSample joins the first few message texts of one direction; the
// content rules only look at how a dialog opens, not its whole tail.
const adviceTextSample = 6

func joinTexts(msgs []types.Message, dir types.Direction) string {
	var parts []string
	for _, m := range msgs {
		if m.Direction != dir {
			continue
		}
		parts = append(parts, m.Text)
		if len(parts) >= adviceTextSample {
			break
		}
	}
	return strings.Join(parts, " \n")
}

// GenerateAdvice evaluates the rule list against one conversation. Pure
// function of that conversation's own fields; duplicates are dropped while
// keeping first-fire order.
func GenerateAdvice(conv types.Conversation, m ChatMetrics, slowReplySec int) []string {
	ctx := adviceContext{
		metrics:      m,
		slowReplySec: slowReplySec,
		inboundText:  joinTexts(conv.Messages, types.DirectionIn),
		outboundText: joinTexts(conv.Messages, types.DirectionOut),
	}

	var out []string
	seen := map[string]bool{}
	for _, rule := range adviceRules {
		if !rule.applies(ctx) || seen[rule.message] {
			continue
		}
		seen[rule.message] = true
		out = append(out, rule.message)
	}
	return out
}
