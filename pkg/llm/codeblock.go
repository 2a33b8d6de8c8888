package llm

import (
	"strings"
)

const fence = "```"

type codeBlock struct {
	lang string
	body string
}

// ExtractCodeBlock returns the code a model wrapped in a Markdown fence.
//
// A block tagged lang (case-insensitive) is preferred, then the first fenced
// block, then the whole reply. A missing closing fence runs to the end of the
// reply, and a closing fence may share a line with code ("SELECT 1```").
// Think tags are dropped first. The result is trimmed.
func ExtractCodeBlock(reply, lang string) string {
	cleaned := StripThinking(reply)
	if body, ok := fencedBlock(cleaned, lang); ok && body != "" {
		return body
	}

	// Stray fences with nothing inside: drop the markers and keep the text.
	bare := strings.TrimSpace(strings.ReplaceAll(cleaned, fence, ""))
	if lang != "" {
		bare = stripLeadingTag(bare, lang)
	}
	return bare
}

func fencedBlock(s, lang string) (string, bool) {
	blocks := parseFencedBlocks(s)
	if len(blocks) == 0 {
		return "", false
	}

	chosen := blocks[0]
	if lang != "" {
		for _, b := range blocks {
			if strings.EqualFold(b.lang, lang) {
				chosen = b
				break
			}
		}
	}

	body := strings.TrimSpace(chosen.body)
	if chosen.lang == "" && lang != "" {
		body = stripLeadingTag(body, lang)
	}
	return body, true
}

func parseFencedBlocks(s string) []codeBlock {
	var blocks []codeBlock
	for {
		start := strings.Index(s, fence)
		if start < 0 {
			return blocks
		}
		rest := strings.TrimLeft(s[start+len(fence):], "`")

		firstLine := rest
		nl := strings.IndexByte(rest, '\n')
		if nl >= 0 {
			firstLine = rest[:nl]
		}

		// ```sql SELECT 1``` on one line
		if end := strings.Index(firstLine, fence); end >= 0 {
			blocks = append(blocks, codeBlock{body: firstLine[:end]})
			s = rest[end+len(fence):]
			continue
		}

		var lang string
		if info := strings.TrimSpace(firstLine); nl >= 0 && isInfoString(info) {
			lang = strings.ToLower(info)
			rest = rest[nl+1:]
		}

		end := strings.Index(rest, fence)
		if end < 0 {
			return append(blocks, codeBlock{lang: lang, body: rest})
		}
		blocks = append(blocks, codeBlock{lang: lang, body: rest[:end]})
		s = strings.TrimLeft(rest[end+len(fence):], "`")
	}
}

// statementKeywords start code, so a fence line holding only one of them is
// not a language tag.
var statementKeywords = map[string]bool{
	"select": true, "with": true, "from": true, "values": true,
	"show": true, "describe": true, "explain": true,
}

// isInfoString reports whether a fence's first line is a language tag rather than code.
func isInfoString(s string) bool {
	if statementKeywords[strings.ToLower(s)] {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '+', r == '#', r == '.':
		default:
			return false
		}
	}
	return true
}

// stripLeadingTag removes a language tag left inline ("sql SELECT 1").
func stripLeadingTag(body, lang string) string {
	if len(body) < len(lang) || !strings.EqualFold(body[:len(lang)], lang) {
		return body
	}
	rest := body[len(lang):]
	if rest == "" {
		return ""
	}
	if rest[0] == ' ' || rest[0] == '\n' || rest[0] == '\t' || rest[0] == '\r' {
		return strings.TrimSpace(rest)
	}
	return body
}
