package resolver

import (
	"strings"

	"pkt.systems/nikiai/schema"
)

var (
	doubleQuotedEscaper = strings.NewReplacer(
		`\`, `\\`,
		`$`, `\$`,
		"`", "\\`",
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
	)
	// Inside an inlined "{prompt}" line breaks would end the command, so they become spaces.
	inlineDoubleQuotedEscaper = strings.NewReplacer(
		`\`, `\\`,
		`$`, `\$`,
		"`", "\\`",
		`"`, `\"`,
		"\n", " ",
		"\r", " ",
	)
)

// EscapeShellArg wraps value in single quotes so a POSIX shell reads it literally.
// Embedded single quotes are written as '\''.
func EscapeShellArg(value string) string {
	return "'" + escapeSingleQuoted(value) + "'"
}

// EscapeDoubleQuoted escapes value for use between double quotes.
func EscapeDoubleQuoted(value string) string {
	return doubleQuotedEscaper.Replace(value)
}

func escapeSingleQuoted(value string) string {
	return strings.ReplaceAll(value, "'", `'\''`)
}

// ReplacePlaceholder substitutes the prompt placeholder in command.
// The quoting style that surrounds the placeholder decides how prompt is escaped;
// a bare placeholder is replaced by a single-quoted argument.
func ReplacePlaceholder(command, prompt string) string {
	doubleQuoted := `"` + schema.PromptPlaceholder + `"`
	if strings.Contains(command, doubleQuoted) {
		return strings.ReplaceAll(command, doubleQuoted, `"`+inlineDoubleQuotedEscaper.Replace(prompt)+`"`)
	}
	singleQuoted := `'` + schema.PromptPlaceholder + `'`
	if strings.Contains(command, singleQuoted) {
		return strings.ReplaceAll(command, singleQuoted, `'`+escapeSingleQuoted(prompt)+`'`)
	}
	return strings.ReplaceAll(command, schema.PromptPlaceholder, EscapeShellArg(prompt))
}

// HasPlaceholder reports whether command inlines the prompt.
func HasPlaceholder(command string) bool {
	return strings.Contains(command, schema.PromptPlaceholder)
}
