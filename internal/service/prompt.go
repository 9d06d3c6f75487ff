package service

import (
	"fmt"
	"strconv"
	"strings"

	"aichat_web/internal/models"
)

// characterDefinitionHeading 接在情境描述後的角色設定標題
const characterDefinitionHeading = "Your Character Definition:"

const placeholderPrefix = "{{char"

// scenarioToken 情境模板的最小單位
// slot == 0 時為字面文字，slot >= 1 時為 {{charN}} 佔位符
type scenarioToken struct {
	literal string
	slot    int
}

// ScenarioTemplate 解析過的情境模板
// 模板只解析一次，之後每回合以不同的角色名單重複解析結果
type ScenarioTemplate struct {
	tokens []scenarioToken
}

// ParseScenario 將情境字串切成字面文字與佔位符的序列
// 不合法的佔位符（缺右括號、索引不是數字、索引為 0 或有前導零）
// 一律當作字面文字保留
func ParseScenario(raw string) *ScenarioTemplate {
	var tokens []scenarioToken

	rest := raw
	for {
		i := strings.Index(rest, placeholderPrefix)
		if i < 0 {
			break
		}

		j := i + len(placeholderPrefix)
		k := j
		for k < len(rest) && rest[k] >= '0' && rest[k] <= '9' {
			k++
		}

		if k == j || !strings.HasPrefix(rest[k:], "}}") {
			// 不是完整的 {{charN}}，前綴留作字面文字後繼續掃描
			tokens = append(tokens, scenarioToken{literal: rest[:j]})
			rest = rest[j:]
			continue
		}

		// 有前導零的索引（如 {{char01}}）不視為佔位符，與逐字比對的行為一致
		slot, err := strconv.Atoi(rest[j:k])
		if err != nil || rest[j] == '0' {
			tokens = append(tokens, scenarioToken{literal: rest[:k+2]})
			rest = rest[k+2:]
			continue
		}

		if i > 0 {
			tokens = append(tokens, scenarioToken{literal: rest[:i]})
		}
		tokens = append(tokens, scenarioToken{slot: slot})
		rest = rest[k+2:]
	}

	if rest != "" {
		tokens = append(tokens, scenarioToken{literal: rest})
	}

	return &ScenarioTemplate{tokens: tokens}
}

// Resolve 以角色名單代入佔位符，names[0] 對應 {{char1}}
// 超出名單範圍的佔位符原樣輸出，不視為錯誤
func (t *ScenarioTemplate) Resolve(names []string) string {
	var sb strings.Builder
	for _, tok := range t.tokens {
		switch {
		case tok.slot == 0:
			sb.WriteString(tok.literal)
		case tok.slot <= len(names):
			sb.WriteString(names[tok.slot-1])
		default:
			sb.WriteString(fmt.Sprintf("{{char%d}}", tok.slot))
		}
	}
	return sb.String()
}

// BuildSystemPrompt 組出某位發言者視角的 system prompt
// {{char1}} 代入發言者本人，{{char2}} 起依加入順序代入其他參與者
// （others 需已過濾掉發言者並保持加入順序，這裡不重新排序）
// 最後接上發言者的角色設定
func BuildSystemPrompt(scenario string, speaker *models.Identity, others []models.Identity) string {
	names := make([]string, 0, len(others)+1)
	names = append(names, speaker.Name)
	for _, other := range others {
		names = append(names, other.Name)
	}

	resolved := ParseScenario(scenario).Resolve(names)
	return resolved + "\n\n" + characterDefinitionHeading + "\n" + speaker.Bio
}
