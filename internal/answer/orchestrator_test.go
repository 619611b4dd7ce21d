package answer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonFTWANG/AIKG/internal/conversation"
	"github.com/LeonFTWANG/AIKG/internal/knowledge"
	"github.com/LeonFTWANG/AIKG/internal/llm"
	"github.com/LeonFTWANG/AIKG/internal/llm/providers"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

type searchCall struct {
	term  string
	limit int
}

// stubSource serves canned search results keyed by search term.
type stubSource struct {
	results    map[string][]knowledge.Node
	searchErr  error
	related    knowledge.Subgraph
	relatedErr error
	calls      []searchCall
}

func (s *stubSource) Search(_ context.Context, term string, limit int) ([]knowledge.Node, error) {
	s.calls = append(s.calls, searchCall{term: term, limit: limit})
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.results[term], nil
}

func (s *stubSource) Related(_ context.Context, _ string, _ int) (knowledge.Subgraph, error) {
	if s.relatedErr != nil {
		return knowledge.Subgraph{}, s.relatedErr
	}
	return s.related, nil
}

func (s *stubSource) terms() []string {
	terms := make([]string, 0, len(s.calls))
	for _, call := range s.calls {
		terms = append(terms, call.term)
	}
	return terms
}

// stubStore replays a fixed history and records append attempts.
type stubStore struct {
	history    []conversation.Message
	historyErr error
	appendErr  error
	appended   []conversation.Message
}

func (s *stubStore) Messages(_ context.Context, _ string) ([]conversation.Message, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.history, nil
}

func (s *stubStore) AppendMessage(_ context.Context, _ string, msg conversation.Message) error {
	s.appended = append(s.appended, msg)
	return s.appendErr
}

// slowGenerator blocks until the call context expires.
type slowGenerator struct{}

func (g *slowGenerator) Name() string { return "slow" }

func (g *slowGenerator) Generate(ctx context.Context, _ llm.GenerationRequest) (string, error) {
	<-ctx.Done()
	return "", llm.TranslateError("slow", ctx.Err())
}

func (g *slowGenerator) Health(_ context.Context) types.HealthStatus {
	return types.Healthy("")
}

func techniqueNode(name, description string) knowledge.Node {
	return knowledge.Node{
		Type:        knowledge.NodeTypeTechnique,
		Name:        name,
		Description: description,
	}
}

func sqlInjectionResults() map[string][]knowledge.Node {
	return map[string][]knowledge.Node{
		"SQL注入": {
			techniqueNode("SQL注入", "通过拼接恶意SQL语句操纵数据库查询。"),
			techniqueNode("SQL盲注", "没有回显时通过布尔或时间差推断数据。"),
		},
	}
}

func TestOrchestrator_Answer_GeneratesStructuredAnswerForNewTopic(t *testing.T) {
	source := &stubSource{results: sqlInjectionResults()}
	gen := providers.NewMockGenerator("这是生成的回答")
	o := NewOrchestrator(source, nil, gen, Config{}, nil)

	result, err := o.Answer(context.Background(), Request{Question: "什么是SQL注入"})

	require.NoError(t, err)
	assert.Equal(t, "这是生成的回答", result.Answer)
	assert.Equal(t, llm.ModeStructured, result.Mode)
	assert.True(t, result.ContextUsed)
	require.Len(t, result.Supporting, 2)
	assert.Equal(t, "SQL注入", result.Supporting[0].Name)

	req := gen.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, llm.ModeStructured, req.Mode)
	assert.Equal(t, llm.SystemPromptFor(llm.ModeStructured), req.System)
	assert.Contains(t, req.Prompt, "问题: 什么是SQL注入")
	assert.Contains(t, req.Prompt, "以下是从知识图谱中检索到的相关安全知识：")
	assert.Contains(t, req.Prompt, "1. 【Technique】SQL注入")
	assert.Contains(t, req.Prompt, "描述: 通过拼接恶意SQL语句操纵数据库查询。")
	assert.Contains(t, req.Prompt, "请基于上述知识图谱信息和对话历史回答。")
}

func TestOrchestrator_Answer_EmptyQuestionRejected(t *testing.T) {
	o := NewOrchestrator(&stubSource{}, nil, nil, Config{}, nil)

	for _, question := range []string{"", "   "} {
		_, err := o.Answer(context.Background(), Request{Question: question})
		assert.True(t, types.IsCode(err, types.INVALID_ARGUMENT))
	}
}

func TestOrchestrator_Answer_DegradedWhenGeneratorUnavailable(t *testing.T) {
	source := &stubSource{results: sqlInjectionResults()}
	gen := providers.NewMockGenerator("unused")
	gen.SetError(llm.NewUnavailableError("mock", assert.AnError))
	o := NewOrchestrator(source, nil, gen, Config{}, nil)

	result, err := o.Answer(context.Background(), Request{Question: "什么是SQL注入"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Answer)
	assert.Contains(t, result.Answer, "关于「什么是SQL注入」")
	assert.Contains(t, result.Answer, "SQL注入")
	assert.Contains(t, result.Answer, "提示: 启用LLM服务可以获得更详细和智能的回答。")
	assert.Equal(t, llm.ModeFreeform, result.Mode)
	assert.True(t, result.ContextUsed)
}

func TestOrchestrator_Answer_ApologyWhenNothingAvailable(t *testing.T) {
	o := NewOrchestrator(&stubSource{}, nil, nil, Config{}, nil)

	result, err := o.Answer(context.Background(), Request{Question: "随便聊聊"})

	require.NoError(t, err)
	assert.Equal(t, noAnswerApology, result.Answer)
	assert.False(t, result.ContextUsed)
	assert.Empty(t, result.Supporting)
	assert.Equal(t, llm.ModeFreeform, result.Mode)
}

func TestOrchestrator_Answer_NilGeneratorQuotesTopItems(t *testing.T) {
	longDescription := strings.Repeat("注", 250)
	source := &stubSource{results: map[string][]knowledge.Node{
		"SQL注入": {
			techniqueNode("SQL注入", longDescription),
			techniqueNode("SQL盲注", "布尔盲注。"),
			techniqueNode("报错注入", "利用报错信息回显数据。"),
			techniqueNode("堆叠注入", "分号拼接多条语句。"),
		},
	}}
	o := NewOrchestrator(source, nil, nil, Config{}, nil)

	result, err := o.Answer(context.Background(), Request{Question: "什么是SQL注入"})

	require.NoError(t, err)
	assert.Contains(t, result.Answer, "1. SQL注入")
	assert.Contains(t, result.Answer, "2. SQL盲注")
	assert.Contains(t, result.Answer, "3. 报错注入")
	assert.NotContains(t, result.Answer, "堆叠注入")

	// Long descriptions are trimmed to 200 runes before the ellipsis.
	assert.Contains(t, result.Answer, strings.Repeat("注", 200)+"...")
	assert.NotContains(t, result.Answer, strings.Repeat("注", 201))

	// The full item list still rides along untrimmed.
	assert.Len(t, result.Supporting, 4)
	assert.Equal(t, llm.ModeFreeform, result.Mode)
}

func TestOrchestrator_Answer_PlaceholderContextWhenNoKnowledge(t *testing.T) {
	gen := providers.NewMockGenerator("回答")
	o := NewOrchestrator(&stubSource{}, nil, gen, Config{}, nil)

	result, err := o.Answer(context.Background(), Request{Question: "什么是SQL注入"})

	require.NoError(t, err)
	assert.False(t, result.ContextUsed)
	assert.NotNil(t, result.Supporting)
	assert.Empty(t, result.Supporting)

	req := gen.LastRequest()
	require.NotNil(t, req)
	assert.Contains(t, req.Prompt, noKnowledgePlaceholder)
}

func TestOrchestrator_Answer_TimeoutFallsBackToDegraded(t *testing.T) {
	source := &stubSource{results: sqlInjectionResults()}
	o := NewOrchestrator(source, nil, &slowGenerator{}, Config{GenerationTimeout: 20 * time.Millisecond}, nil)

	start := time.Now()
	result, err := o.Answer(context.Background(), Request{Question: "什么是SQL注入"})

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Contains(t, result.Answer, "SQL注入")
	assert.Contains(t, result.Answer, "提示: 启用LLM服务可以获得更详细和智能的回答。")
	assert.Equal(t, llm.ModeFreeform, result.Mode)
}

func TestOrchestrator_Answer_SearchFailureStillAnswers(t *testing.T) {
	source := &stubSource{searchErr: types.NewError(types.GRAPH_UNAVAILABLE, "neo4j down")}
	gen := providers.NewMockGenerator("回答")
	o := NewOrchestrator(source, nil, gen, Config{}, nil)

	result, err := o.Answer(context.Background(), Request{Question: "什么是SQL注入"})

	require.NoError(t, err)
	assert.Equal(t, "回答", result.Answer)
	assert.False(t, result.ContextUsed)
	require.NotNil(t, gen.LastRequest())
	assert.Contains(t, gen.LastRequest().Prompt, noKnowledgePlaceholder)
}

func TestOrchestrator_Answer_EmptyGeneratorOutputFallsBack(t *testing.T) {
	source := &stubSource{results: sqlInjectionResults()}
	gen := providers.NewMockGenerator("   ")
	o := NewOrchestrator(source, nil, gen, Config{}, nil)

	result, err := o.Answer(context.Background(), Request{Question: "什么是SQL注入"})

	require.NoError(t, err)
	assert.Contains(t, result.Answer, "关于「什么是SQL注入」")
	assert.Equal(t, llm.ModeFreeform, result.Mode)
}

func TestOrchestrator_Answer_PersistsTurn(t *testing.T) {
	source := &stubSource{results: sqlInjectionResults()}
	store := &stubStore{}
	gen := providers.NewMockGenerator("回答")
	o := NewOrchestrator(source, store, gen, Config{}, nil)

	_, err := o.Answer(context.Background(), Request{
		Question:       "什么是SQL注入",
		ConversationID: "conv-1",
		UserID:         "alice",
	})

	require.NoError(t, err)
	require.Len(t, store.appended, 1)
	msg := store.appended[0]
	assert.Equal(t, "什么是SQL注入", msg.Question)
	assert.Equal(t, "回答", msg.Answer)
	assert.Equal(t, llm.ModeStructured, msg.Mode)
	require.Len(t, msg.RelatedKnowledge, 2)
	assert.Equal(t, "SQL注入", msg.RelatedKnowledge[0].Name)
}

func TestOrchestrator_Answer_PersistenceRequiresUserAndConversation(t *testing.T) {
	source := &stubSource{results: sqlInjectionResults()}
	store := &stubStore{}
	gen := providers.NewMockGenerator("回答", "回答", "回答")
	o := NewOrchestrator(source, store, gen, Config{}, nil)

	requests := []Request{
		{Question: "什么是SQL注入"},
		{Question: "什么是SQL注入", ConversationID: "conv-1"},
		{Question: "什么是SQL注入", UserID: "alice"},
	}
	for _, req := range requests {
		_, err := o.Answer(context.Background(), req)
		require.NoError(t, err)
	}

	assert.Empty(t, store.appended)
}

func TestOrchestrator_Answer_PersistenceFailureSwallowed(t *testing.T) {
	source := &stubSource{results: sqlInjectionResults()}
	store := &stubStore{appendErr: types.NewError(types.GRAPH_UNAVAILABLE, "write refused")}
	gen := providers.NewMockGenerator("回答")
	o := NewOrchestrator(source, store, gen, Config{}, nil)

	result, err := o.Answer(context.Background(), Request{
		Question:       "什么是SQL注入",
		ConversationID: "conv-1",
		UserID:         "alice",
	})

	require.NoError(t, err)
	assert.Equal(t, "回答", result.Answer)
	assert.Len(t, store.appended, 1)
}

func TestOrchestrator_Answer_DegradedTurnPersistedAsFreeform(t *testing.T) {
	source := &stubSource{results: sqlInjectionResults()}
	store := &stubStore{}
	gen := providers.NewMockGenerator("unused")
	gen.SetError(llm.NewUnavailableError("mock", assert.AnError))
	o := NewOrchestrator(source, store, gen, Config{}, nil)

	result, err := o.Answer(context.Background(), Request{
		Question:       "什么是SQL注入",
		ConversationID: "conv-1",
		UserID:         "alice",
	})

	require.NoError(t, err)
	assert.Equal(t, llm.ModeFreeform, result.Mode)
	require.Len(t, store.appended, 1)
	assert.Equal(t, llm.ModeFreeform, store.appended[0].Mode)
}

func TestOrchestrator_Answer_HistoryWindowBoundsPrompt(t *testing.T) {
	var history []conversation.Message
	for _, label := range []string{"一", "二", "三", "四", "五", "六", "七", "八"} {
		history = append(history, conversation.Message{
			Question: "提问" + label,
			Answer:   "解答" + label,
			Mode:     llm.ModeFreeform,
		})
	}
	store := &stubStore{history: history}
	gen := providers.NewMockGenerator("回答")
	o := NewOrchestrator(&stubSource{}, store, gen, Config{}, nil)

	_, err := o.Answer(context.Background(), Request{Question: "随便聊聊", ConversationID: "conv-1"})

	require.NoError(t, err)
	req := gen.LastRequest()
	require.NotNil(t, req)
	assert.Contains(t, req.Prompt, "对话历史:")
	assert.Contains(t, req.Prompt, "User: 提问三")
	assert.Contains(t, req.Prompt, "User: 提问八")
	assert.NotContains(t, req.Prompt, "提问一")
	assert.NotContains(t, req.Prompt, "提问二")
}

func TestOrchestrator_Answer_TopicCoverageReadsFullHistory(t *testing.T) {
	// The structured exchange sits outside the 6-message prompt window
	// but must still flip the follow-up question to freeform.
	history := []conversation.Message{
		{Question: "什么是SQL注入", Answer: "结构化回答", Mode: llm.ModeStructured},
	}
	for _, label := range []string{"一", "二", "三", "四", "五", "六", "七"} {
		history = append(history, conversation.Message{
			Question: "提问" + label,
			Answer:   "解答" + label,
			Mode:     llm.ModeFreeform,
		})
	}
	store := &stubStore{history: history}
	gen := providers.NewMockGenerator("后续回答")
	o := NewOrchestrator(&stubSource{results: sqlInjectionResults()}, store, gen, Config{}, nil)

	result, err := o.Answer(context.Background(), Request{Question: "如何防御SQL注入", ConversationID: "conv-1"})

	require.NoError(t, err)
	assert.Equal(t, llm.ModeFreeform, result.Mode)
	req := gen.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, llm.ModeFreeform, req.Mode)
	assert.Equal(t, llm.SystemPromptFor(llm.ModeFreeform), req.System)
	assert.NotContains(t, req.Prompt, "User: 什么是SQL注入")
}

func TestOrchestrator_Answer_HistoryLoadFailureTreatedAsEmpty(t *testing.T) {
	store := &stubStore{historyErr: types.NewError(types.GRAPH_UNAVAILABLE, "neo4j down")}
	gen := providers.NewMockGenerator("回答")
	o := NewOrchestrator(&stubSource{results: sqlInjectionResults()}, store, gen, Config{}, nil)

	result, err := o.Answer(context.Background(), Request{Question: "什么是SQL注入", ConversationID: "conv-1"})

	require.NoError(t, err)
	assert.Equal(t, llm.ModeStructured, result.Mode)
}

func TestOrchestrator_Answer_SearchesEachCanonicalKeyword(t *testing.T) {
	source := &stubSource{results: map[string][]knowledge.Node{
		"SQL注入": {techniqueNode("SQL注入", "")},
		"XSS":   {techniqueNode("XSS", "")},
		"攻击":    {techniqueNode("攻击面管理", "")},
		"防御":    {techniqueNode("纵深防御", "")},
	}}
	gen := providers.NewMockGenerator("回答")
	o := NewOrchestrator(source, nil, gen, Config{}, nil)

	result, err := o.Answer(context.Background(), Request{Question: "如何防御SQL注入和XSS攻击"})

	require.NoError(t, err)
	assert.Equal(t, []string{"SQL注入", "XSS", "攻击", "防御"}, source.terms())
	for _, call := range source.calls {
		assert.Equal(t, DefaultSearchLimit, call.limit)
	}
	assert.Len(t, result.Supporting, 4)
}

func TestOrchestrator_Answer_TokenFallbackKeywords(t *testing.T) {
	source := &stubSource{}
	gen := providers.NewMockGenerator("回答")
	o := NewOrchestrator(source, nil, gen, Config{}, nil)

	_, err := o.Answer(context.Background(), Request{Question: "how to harden kubernetes ingress tls"})

	require.NoError(t, err)
	assert.Equal(t, []string{"kubernetes", "ingress", "harden"}, source.terms())
}

func TestOrchestrator_Answer_DedupAndCapAcrossKeywords(t *testing.T) {
	source := &stubSource{results: map[string][]knowledge.Node{
		"SQL注入": {techniqueNode("SQL注入", ""), techniqueNode("参数化查询", "")},
		"XSS":   {techniqueNode("参数化查询", ""), techniqueNode("XSS", ""), techniqueNode("CSP", "")},
	}}
	gen := providers.NewMockGenerator("回答")
	o := NewOrchestrator(source, nil, gen, Config{MaxContextItems: 3, SearchLimit: 2}, nil)

	result, err := o.Answer(context.Background(), Request{Question: "SQL注入与XSS"})

	require.NoError(t, err)
	names := make([]string, 0, len(result.Supporting))
	for _, item := range result.Supporting {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"SQL注入", "参数化查询", "XSS"}, names)
	for _, call := range source.calls {
		assert.Equal(t, 2, call.limit)
	}
}

func TestBuildContextBlock_RendersItems(t *testing.T) {
	items := []knowledge.Node{
		{
			Type:        knowledge.NodeTypeCVE,
			Name:        "CVE-2021-44228",
			Description: "Log4j JNDI 注入导致远程代码执行。",
			Severity:    knowledge.SeverityCritical,
			URL:         "https://nvd.nist.gov/vuln/detail/CVE-2021-44228",
		},
		techniqueNode("SQL注入", "拼接恶意SQL语句。"),
	}

	block := buildContextBlock(items)

	assert.True(t, strings.HasPrefix(block, knowledgeHeader))
	assert.Contains(t, block, "\n1. 【CVE】CVE-2021-44228 [严重程度: CRITICAL]")
	assert.Contains(t, block, "\n   描述: Log4j JNDI 注入导致远程代码执行。")
	assert.Contains(t, block, "\n   链接: https://nvd.nist.gov/vuln/detail/CVE-2021-44228")
	assert.Contains(t, block, "\n2. 【Technique】SQL注入\n   描述: 拼接恶意SQL语句。")
	assert.NotContains(t, block, "【Technique】SQL注入 [严重程度")
}

func TestBuildContextBlock_PlaceholderWhenEmpty(t *testing.T) {
	assert.Equal(t, noKnowledgePlaceholder, buildContextBlock(nil))
	assert.Equal(t, noKnowledgePlaceholder, buildContextBlock([]knowledge.Node{}))
}

func TestHistoryBlock_FormatsWindow(t *testing.T) {
	window := []conversation.Message{
		{Question: "什么是XSS", Answer: "跨站脚本攻击。"},
		{Question: "如何防御", Answer: "输出编码。"},
	}

	block := historyBlock(window)

	assert.Equal(t, "对话历史:\nUser: 什么是XSS\nAssistant: 跨站脚本攻击。\nUser: 如何防御\nAssistant: 输出编码。\n", block)
}

func TestHistoryBlock_EmptyWindow(t *testing.T) {
	assert.Empty(t, historyBlock(nil))
}

func TestUserPrompt_Layout(t *testing.T) {
	prompt := userPrompt("问题文本", "知识块", "历史块")

	assert.Equal(t, "历史块\n\n问题: 问题文本\n\n知识块\n\n请基于上述知识图谱信息和对话历史回答。", prompt)
}

func TestDegradedAnswer_UnnamedItem(t *testing.T) {
	o := NewOrchestrator(&stubSource{}, nil, nil, Config{}, nil)

	text := o.degradedAnswer("问题", []knowledge.Node{{Description: "没有名字的条目。"}})

	assert.Contains(t, text, "1. 未命名")
}

func TestTail(t *testing.T) {
	history := []conversation.Message{
		{Question: "a"}, {Question: "b"}, {Question: "c"},
	}

	assert.Len(t, tail(history, 2), 2)
	assert.Equal(t, "b", tail(history, 2)[0].Question)
	assert.Len(t, tail(history, 5), 3)
	assert.Len(t, tail(history, 0), 3)
	assert.Empty(t, tail(nil, 2))
}

func TestTrimRunes(t *testing.T) {
	assert.Equal(t, "短描述", trimRunes("短描述", 200))
	assert.Equal(t, "注入", trimRunes("注入攻击", 2))
}
