package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/LeonFTWANG/AIKG/internal/knowledge"
	"github.com/LeonFTWANG/AIKG/internal/llm"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

// Summary completions are short and deliberately cooler than answers.
const (
	summaryTemperature = 0.5
	summaryMaxTokens   = 300
)

// Summarize produces a two-to-three sentence summary of one knowledge
// node based on its depth-1 neighborhood. Without a generator, or when
// generation fails, it degrades to "name: description". A missing node
// yields an explanatory message, not an error.
func (o *Orchestrator) Summarize(ctx context.Context, nodeName string) (string, error) {
	name := strings.TrimSpace(nodeName)
	if name == "" {
		return "", types.NewError(types.INVALID_ARGUMENT, "node name must not be empty")
	}

	sub, err := o.source.Related(ctx, name, 1)
	if err != nil {
		return "", err
	}
	if sub.IsEmpty() {
		return fmt.Sprintf("未找到知识点: %s", name), nil
	}

	main := sub.Nodes[0]
	for _, node := range sub.Nodes {
		if node.Name == name {
			main = node
			break
		}
	}

	plain := plainSummary(main)
	if o.generator == nil {
		return plain, nil
	}

	genCtx, cancel := context.WithTimeout(ctx, o.config.GenerationTimeout)
	defer cancel()

	prompt := fmt.Sprintf("请用2-3句话总结以下安全知识点：\n知识点名称: %s\n类型: %s\n描述: %s\n相关知识点数量: %d",
		main.Name, main.Type, main.Description, len(sub.Nodes)-1)
	text, err := o.generator.Generate(genCtx, llm.GenerationRequest{
		System:      llm.SummarySystemPrompt,
		Prompt:      prompt,
		Mode:        llm.ModeFreeform,
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		o.logger.Warn("summary generation failed", "node", name, "error", err)
		return plain, nil
	}
	if strings.TrimSpace(text) == "" {
		return plain, nil
	}
	return text, nil
}

func plainSummary(node knowledge.Node) string {
	description := node.Description
	if description == "" {
		description = "无描述"
	}
	return fmt.Sprintf("%s: %s", node.Name, description)
}
