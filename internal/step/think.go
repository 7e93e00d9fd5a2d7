package step

import (
	"regexp"
	"strings"
)

// thinkBlock matches the first <think>...</think> block, non-greedy, across
// newlines.
var thinkBlock = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

// SplitThink separates a model's reasoning block from its answer. Only the
// first block is extracted; later blocks stay in the answer. Without a block
// the whole trimmed content is the answer.
func SplitThink(content string) (think, answer string) {
	loc := thinkBlock.FindStringSubmatchIndex(content)
	if loc == nil {
		return "", strings.TrimSpace(content)
	}
	think = strings.TrimSpace(content[loc[2]:loc[3]])
	answer = strings.TrimSpace(content[:loc[0]] + content[loc[1]:])
	return think, answer
}
