package answer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonFTWANG/AIKG/internal/knowledge"
	"github.com/LeonFTWANG/AIKG/internal/llm"
	"github.com/LeonFTWANG/AIKG/internal/llm/providers"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

func sqlInjectionNeighborhood() knowledge.Subgraph {
	return knowledge.Subgraph{
		Nodes: []knowledge.Node{
			techniqueNode("SQL注入", "通过拼接恶意SQL语句操纵数据库查询。"),
			techniqueNode("参数化查询", "将用户输入作为参数而非语句片段。"),
			techniqueNode("WAF", "在应用前过滤已知攻击特征。"),
		},
	}
}

func TestOrchestrator_Summarize_GeneratedSummary(t *testing.T) {
	source := &stubSource{related: sqlInjectionNeighborhood()}
	gen := providers.NewMockGenerator("SQL注入是最常见的Web漏洞之一。防御核心是参数化查询。")
	o := NewOrchestrator(source, nil, gen, Config{}, nil)

	summary, err := o.Summarize(context.Background(), "SQL注入")

	require.NoError(t, err)
	assert.Equal(t, "SQL注入是最常见的Web漏洞之一。防御核心是参数化查询。", summary)

	req := gen.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, llm.SummarySystemPrompt, req.System)
	assert.Equal(t, llm.ModeFreeform, req.Mode)
	assert.InDelta(t, summaryTemperature, req.Temperature, 0.001)
	assert.Equal(t, summaryMaxTokens, req.MaxTokens)
	assert.Contains(t, req.Prompt, "请用2-3句话总结以下安全知识点：")
	assert.Contains(t, req.Prompt, "知识点名称: SQL注入")
	assert.Contains(t, req.Prompt, "类型: Technique")
	assert.Contains(t, req.Prompt, "相关知识点数量: 2")
}

func TestOrchestrator_Summarize_MissingNode(t *testing.T) {
	o := NewOrchestrator(&stubSource{}, nil, providers.NewMockGenerator("unused"), Config{}, nil)

	summary, err := o.Summarize(context.Background(), "幽灵节点")

	require.NoError(t, err)
	assert.Equal(t, "未找到知识点: 幽灵节点", summary)
}

func TestOrchestrator_Summarize_NoGenerator(t *testing.T) {
	source := &stubSource{related: sqlInjectionNeighborhood()}
	o := NewOrchestrator(source, nil, nil, Config{}, nil)

	summary, err := o.Summarize(context.Background(), "SQL注入")

	require.NoError(t, err)
	assert.Equal(t, "SQL注入: 通过拼接恶意SQL语句操纵数据库查询。", summary)
}

func TestOrchestrator_Summarize_NoDescription(t *testing.T) {
	source := &stubSource{related: knowledge.Subgraph{
		Nodes: []knowledge.Node{{Type: knowledge.NodeTypeTool, Name: "sqlmap"}},
	}}
	o := NewOrchestrator(source, nil, nil, Config{}, nil)

	summary, err := o.Summarize(context.Background(), "sqlmap")

	require.NoError(t, err)
	assert.Equal(t, "sqlmap: 无描述", summary)
}

func TestOrchestrator_Summarize_GeneratorFailureFallsBack(t *testing.T) {
	source := &stubSource{related: sqlInjectionNeighborhood()}
	gen := providers.NewMockGenerator("unused")
	gen.SetError(llm.NewTimeoutError("mock", assert.AnError))
	o := NewOrchestrator(source, nil, gen, Config{}, nil)

	summary, err := o.Summarize(context.Background(), "SQL注入")

	require.NoError(t, err)
	assert.Equal(t, "SQL注入: 通过拼接恶意SQL语句操纵数据库查询。", summary)
}

func TestOrchestrator_Summarize_PrefersNodeMatchingName(t *testing.T) {
	source := &stubSource{related: knowledge.Subgraph{
		Nodes: []knowledge.Node{
			techniqueNode("参数化查询", "邻居节点排在前面。"),
			techniqueNode("SQL注入", "主节点。"),
		},
	}}
	o := NewOrchestrator(source, nil, nil, Config{}, nil)

	summary, err := o.Summarize(context.Background(), "SQL注入")

	require.NoError(t, err)
	assert.Equal(t, "SQL注入: 主节点。", summary)
}

func TestOrchestrator_Summarize_FallsBackToFirstNode(t *testing.T) {
	// Name matching is exact; a near miss summarizes the first node.
	source := &stubSource{related: knowledge.Subgraph{
		Nodes: []knowledge.Node{techniqueNode("SQL注入", "第一个节点。")},
	}}
	o := NewOrchestrator(source, nil, nil, Config{}, nil)

	summary, err := o.Summarize(context.Background(), "sql注入")

	require.NoError(t, err)
	assert.Equal(t, "SQL注入: 第一个节点。", summary)
}

func TestOrchestrator_Summarize_EmptyName(t *testing.T) {
	o := NewOrchestrator(&stubSource{}, nil, nil, Config{}, nil)

	_, err := o.Summarize(context.Background(), "  ")

	assert.True(t, types.IsCode(err, types.INVALID_ARGUMENT))
}

func TestOrchestrator_Summarize_RelatedErrorPropagates(t *testing.T) {
	source := &stubSource{relatedErr: types.NewError(types.GRAPH_UNAVAILABLE, "neo4j down")}
	o := NewOrchestrator(source, nil, nil, Config{}, nil)

	_, err := o.Summarize(context.Background(), "SQL注入")

	assert.True(t, types.IsCode(err, types.GRAPH_UNAVAILABLE))
}
