package position

import (
	"regexp"
	"strings"
)

const algebraicMove = `(?:O-O(?:-O)?|[KQRBNP]?[a-h]?[1-8]?x?[a-h][1-8](?:=[QRBN])?)[+#]?`

var (
	plaintextPrefixRe = regexp.MustCompile(`(?i)^(?:plaintext\b\s*)+`)
	movePairRe        = regexp.MustCompile(`\d+\.\s*` + algebraicMove + `\s+` + algebraicMove)
)

// Clean strips the "plaintext" marker some providers prepend and removes move-number
// sequences, which are continuations the prompt forbids. Removing one pair can join the
// neighbours into a new pair, so both steps repeat until the text stops changing.
func Clean(text string) string {
	cleaned := strings.TrimSpace(text)
	for {
		next := plaintextPrefixRe.ReplaceAllString(cleaned, "")
		next = movePairRe.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == cleaned {
			return cleaned
		}
		cleaned = next
	}
}
