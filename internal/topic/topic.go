// Package topic detects security topics in questions and decides whether
// a topic was already answered in structured form earlier in the
// conversation. All functions are pure and safe for concurrent use.
package topic

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// CanonicalTerms is the ordered list of tracked security topics. Order is
// part of the contract: detection returns the first containing match, so
// more specific terms come before generic ones ("SQL注入" before "注入"
// would, "CVE" before "漏洞").
var CanonicalTerms = []string{
	"SQL注入", "XSS", "CSRF", "RCE", "SSRF", "XXE",
	"缓冲区溢出", "权限提升", "命令注入", "文件包含",
	"文件上传", "反序列化", "越权", "逻辑漏洞", "加密",
	"认证", "CVE", "漏洞", "攻击", "防御", "渗透测试",
	"SQL Injection", "Cross-Site Scripting", "Remote Code Execution",
}

// Detect returns the first canonical term contained in the text,
// case-insensitively, or "" when none matches.
func Detect(text string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	for _, term := range CanonicalTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			return term
		}
	}
	return ""
}

// maxFallbackTokens limits how many tokens the split fallback yields.
const maxFallbackTokens = 3

// pseudoKeywordRunes is the prefix length used when nothing else matches.
const pseudoKeywordRunes = 20

// Keywords extracts search keywords from a question. Every canonical term
// contained in the text wins, in list order. With no term match, the
// three longest whitespace-delimited tokens longer than two runes are
// used (earlier tokens win length ties). As a last resort the first
// twenty runes become a single pseudo-keyword.
func Keywords(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{}
	}

	lower := strings.ToLower(trimmed)
	keywords := make([]string, 0, 4)
	for _, term := range CanonicalTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			keywords = append(keywords, term)
		}
	}
	if len(keywords) > 0 {
		return keywords
	}

	type token struct {
		text string
		pos  int
	}
	var candidates []token
	for i, word := range strings.Fields(trimmed) {
		if utf8.RuneCountInString(word) > 2 {
			candidates = append(candidates, token{text: word, pos: i})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return utf8.RuneCountInString(candidates[i].text) > utf8.RuneCountInString(candidates[j].text)
	})
	for i := 0; i < len(candidates) && i < maxFallbackTokens; i++ {
		keywords = append(keywords, candidates[i].text)
	}
	if len(keywords) > 0 {
		return keywords
	}

	runes := []rune(trimmed)
	if len(runes) > pseudoKeywordRunes {
		runes = runes[:pseudoKeywordRunes]
	}
	return []string{string(runes)}
}
