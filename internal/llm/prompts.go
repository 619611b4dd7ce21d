package llm

// System prompts for the two answer modes. The structured prompt pins the
// exact JSON field set the frontend renders as modules; missing information
// is filled with the "暂无" sentinel rather than omitted.
const (
	StructuredSystemPrompt = `你是一个安全领域的AI助手。请务必以JSON格式输出回答，不要包含 markdown 代码块标记，直接返回合法的 JSON 对象。
JSON 结构必须严格包含以下字段，如果某个字段没有相关信息，请填"暂无"：
{
    "vulnerability_introduction": "漏洞介绍",
    "vulnerability_principle": "漏洞原理",
    "classic_cases": "经典案例",
    "preventive_measures": "预防措施",
    "practice_range": "实践靶场",
    "relevant_links": [
        {"name": "链接名称", "url": "链接地址"}
    ]
}
确保回答准确、专业、易懂，使用中文。`

	FreeformSystemPrompt = `你是一个安全领域的AI助手，专门帮助用户学习和理解网络安全知识。
请用自然语言（Plain Text）回答用户的问题。不要使用JSON格式。
回答应准确、专业、易懂，并结合上下文。`

	SummarySystemPrompt = `你是一个安全知识总结助手`
)

// NoInfoSentinel is the value the structured prompt asks for when a
// section has nothing to say.
const NoInfoSentinel = "暂无"

// SystemPromptFor returns the system prompt matching the mode. Unknown
// modes get the freeform prompt.
func SystemPromptFor(mode Mode) string {
	if mode.IsStructured() {
		return StructuredSystemPrompt
	}
	return FreeformSystemPrompt
}
