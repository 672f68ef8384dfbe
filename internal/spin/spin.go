// Package spin scans manager replies for the four SPIN question stages
// (Situation, Problem, Implication, Need-payoff) and related behavior
// signals, and rolls both up per manager.
package spin

import (
	"regexp"

	"chat-insights-go/internal/types"
)

// Stage keyword patterns. Matching is keyword-based, not statistical; a text
// hitting several stages counts toward each of them.
var (
	// Situation: learn the customer's current context.
	reSituation = regexp.MustCompile(`(?i)(какой|какая|какие|сколько|когда|куда|где|откуда` +
		`|размер|рост|вес|параметр|характеристик` +
		`|для кого|кому|кто` +
		`|как часто|как долго|как давно` +
		`|расскажите|подскажите|уточните)`)

	// Problem: surface dissatisfaction.
	reProblem = regexp.MustCompile(`(?i)(что не устраивает|что не нравится|что не подходит` +
		`|какие сложности|какие проблемы|какие трудности` +
		`|что беспокоит|что волнует|что тревожит` +
		`|не устраивает|не подходит|не нравится` +
		`|проблема|сложность|трудность|неудобство` +
		`|что мешает|не хватает|недостаток)`)

	// Implication: amplify the consequences of the problem.
	reImplication = regexp.MustCompile(`(?i)(к чему это приводит|к чему приводит|что это значит` +
		`|как это влияет|как влияет|как это сказывается` +
		`|что будет если|что будет когда|что произойдёт` +
		`|последствия|влияние` +
		`|как это отражается|как отражается` +
		`|из-за этого|в результате` +
		`|это означает|это значит|это приведёт)`)

	// Need-payoff: let the customer voice the value of solving it.
	reNeedPayoff = regexp.MustCompile(`(?i)(как это поможет|как поможет|что это даст|что даст` +
		`|зачем это нужно|зачем нужно|для чего` +
		`|выгода|преимущество|польза` +
		`|это позволит|это даст возможность|это поможет` +
		`|важно для вас|важно ли|нужно ли` +
		`|будет удобнее|будет лучше|будет проще` +
		`|решит проблему|решит вопрос|поможет решить` +
		`|сэкономит|упростит|ускорит|улучшит)`)
)

const stageCount = 4

// ChatSpin is the SPIN view of one conversation's outbound side.
type ChatSpin struct {
	ChatID      string
	ManagerID   string
	ManagerName string

	OutboundMessages int
	Questions        int

	SituationCount   int
	ProblemCount     int
	ImplicationCount int
	NeedPayoffCount  int

	HasSituation   bool
	HasProblem     bool
	HasImplication bool
	HasNeedPayoff  bool

	// Completeness is stages-present / 4 as a percentage: 0, 25, ... 100.
	Completeness float64
}

// FullCycle reports a conversation where all four stages appear.
func (c ChatSpin) FullCycle() bool { return c.Completeness == 100 }

// textish filters out system/service messages that carry no dialog text.
func textish(m types.Message) bool {
	switch m.MessageType {
	case "", "TEXT", "COMMAND", "ORDER", "PRODUCT", "FILE", "AUDIO", "IMAGE":
		return true
	default:
		return false
	}
}

func managerTexts(conv types.Conversation) []string {
	var out []string
	for _, m := range conv.Messages {
		if m.Direction == types.DirectionOut && textish(m) && m.Text != "" {
			out = append(out, m.Text)
		}
	}
	return out
}

// AnalyzeChat classifies one conversation's outbound texts by SPIN stage.
func AnalyzeChat(conv types.Conversation) ChatSpin {
	c := ChatSpin{
		ChatID:      conv.ID,
		ManagerID:   conv.ManagerID,
		ManagerName: conv.ManagerName,
	}

	for _, text := range managerTexts(conv) {
		c.OutboundMessages++
		if countQuestions(text) > 0 {
			c.Questions++
		}
		c.SituationCount += len(reSituation.FindAllString(text, -1))
		c.ProblemCount += len(reProblem.FindAllString(text, -1))
		c.ImplicationCount += len(reImplication.FindAllString(text, -1))
		c.NeedPayoffCount += len(reNeedPayoff.FindAllString(text, -1))
	}

	c.HasSituation = c.SituationCount > 0
	c.HasProblem = c.ProblemCount > 0
	c.HasImplication = c.ImplicationCount > 0
	c.HasNeedPayoff = c.NeedPayoffCount > 0

	stages := 0
	for _, present := range []bool{c.HasSituation, c.HasProblem, c.HasImplication, c.HasNeedPayoff} {
		if present {
			stages++
		}
	}
	c.Completeness = float64(stages) / stageCount * 100
	return c
}
