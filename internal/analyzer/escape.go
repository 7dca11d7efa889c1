package analyzer

import "strings"

// escaper turns plain text into the analyzer's stream format, where
// '\' and the five control characters ^ / $ [ ] must be backslash-escaped.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	`^`, `\^`,
	`/`, `\/`,
	`$`, `\$`,
	`[`, `\[`,
	`]`, `\]`,
)

// Escape prepares text for sending to the analyzer.
func Escape(text string) string {
	return escaper.Replace(text)
}

// Unescape reverses Escape. A backslash drops and keeps the character after
// it; a trailing lone backslash is kept as is.
func Unescape(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' && i+1 < len(text) {
			i++
		}
		b.WriteByte(text[i])
	}
	return b.String()
}
