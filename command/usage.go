// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"flag"
	"strings"

	"github.com/kr/text"
)

const (
	// maxLineLength is the maximum width of any line.
	maxLineLength int = 80

	// flagIndent is the indentation of flag descriptions.
	flagIndent int = 5
)

// Usage renders a command's help text followed by its flags. Flag descriptions are wrapped to fit a terminal, and
// non-zero defaults are shown next to the flag name.
func Usage(txt string, flags *flag.FlagSet) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(txt))
	b.WriteString("\n\n")

	if flags != nil {
		b.WriteString("Command Options\n\n")
		flags.VisitAll(func(f *flag.Flag) {
			b.WriteString("  -" + f.Name)
			if f.DefValue != "" && f.DefValue != "false" {
				b.WriteString("=" + f.DefValue)
			}
			b.WriteString("\n")
			b.WriteString(indent(text.Wrap(f.Usage, maxLineLength-flagIndent), flagIndent))
			b.WriteString("\n\n")
		})
	}

	return strings.TrimRight(b.String(), "\n")
}

func indent(s string, pad int) string {
	prefix := strings.Repeat(" ", pad)
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
