package answer

import (
	"fmt"
	"strings"

	"github.com/LeonFTWANG/AIKG/internal/conversation"
	"github.com/LeonFTWANG/AIKG/internal/knowledge"
)

// Text fragments of the assembled prompt and of degraded answers.
const (
	noKnowledgePlaceholder = "暂无相关知识点。"
	knowledgeHeader        = "以下是从知识图谱中检索到的相关安全知识：\n"
	historyHeader          = "对话历史:\n"
	degradedNotice         = "\n\n提示: 启用LLM服务可以获得更详细和智能的回答。"
	noAnswerApology        = "抱歉，我暂时无法回答这个问题。请检查问题是否与安全知识相关，或联系管理员启用LLM服务。"
	unnamedItem            = "未命名"
)

// descriptionLimit caps how many runes of a description a degraded answer quotes.
const descriptionLimit = 200

// buildContextBlock renders the supporting items for the prompt. An empty
// set yields an explicit placeholder so the generator never mistakes
// absence for a missing field.
func buildContextBlock(items []knowledge.Node) string {
	if len(items) == 0 {
		return noKnowledgePlaceholder
	}

	var b strings.Builder
	b.WriteString(knowledgeHeader)
	for i, item := range items {
		fmt.Fprintf(&b, "\n%d. 【%s】%s", i+1, item.Type, item.Name)
		if item.Severity != "" {
			fmt.Fprintf(&b, " [严重程度: %s]", item.Severity)
		}
		fmt.Fprintf(&b, "\n   描述: %s", item.Description)
		if item.URL != "" {
			fmt.Fprintf(&b, "\n   链接: %s", item.URL)
		}
	}
	return b.String()
}

// historyBlock renders the bounded conversation window for the prompt.
func historyBlock(window []conversation.Message) string {
	if len(window) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(historyHeader)
	for _, msg := range window {
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", msg.Question, msg.Answer)
	}
	return b.String()
}

// userPrompt stitches history, question, and knowledge context together.
func userPrompt(question, knowledgeContext, historyText string) string {
	return fmt.Sprintf("%s\n\n问题: %s\n\n%s\n\n请基于上述知识图谱信息和对话历史回答。",
		historyText, question, knowledgeContext)
}

// degradedAnswer builds a graph-only answer for when generation is
// unavailable. It never fails: with no supporting items it falls back to
// a fixed apology.
func (o *Orchestrator) degradedAnswer(question string, items []knowledge.Node) string {
	if len(items) == 0 {
		return noAnswerApology
	}
	if len(items) > o.config.FallbackItems {
		items = items[:o.config.FallbackItems]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "关于「%s」，我找到了以下相关信息：\n", question)
	for i, item := range items {
		name := item.Name
		if name == "" {
			name = unnamedItem
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, name)
		if item.Description != "" {
			fmt.Fprintf(&b, "\n   %s...", trimRunes(item.Description, descriptionLimit))
		}
	}
	b.WriteString(degradedNotice)
	return b.String()
}

func trimRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// tail returns the last n messages of the history.
func tail(history []conversation.Message, n int) []conversation.Message {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
