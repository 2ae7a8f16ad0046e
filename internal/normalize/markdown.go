package normalize

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// PlainText flattens a markdown answer for terminal display. Emphasis and
// link targets are dropped, block structure is kept as blank lines and list
// items as "- " lines.
func PlainText(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}

	root := blackfriday.New(blackfriday.WithExtensions(blackfriday.CommonExtensions)).Parse([]byte(md))

	var b strings.Builder
	root.Walk(func(n *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch n.Type {
		case blackfriday.Text, blackfriday.Code, blackfriday.HTMLSpan:
			if entering {
				b.Write(n.Literal)
			}
		case blackfriday.CodeBlock:
			if entering {
				b.Write(n.Literal)
				b.WriteString("\n")
			}
		case blackfriday.Hardbreak:
			b.WriteString("\n")
		case blackfriday.Item:
			if entering {
				b.WriteString("- ")
			}
		case blackfriday.Paragraph:
			if !entering {
				if n.Parent != nil && n.Parent.Type == blackfriday.Item {
					b.WriteString("\n")
				} else {
					b.WriteString("\n\n")
				}
			}
		case blackfriday.Heading, blackfriday.List, blackfriday.BlockQuote, blackfriday.Table:
			if !entering {
				b.WriteString("\n\n")
			}
		case blackfriday.TableCell:
			if !entering {
				b.WriteString("\t")
			}
		case blackfriday.TableRow:
			if !entering {
				b.WriteString("\n")
			}
		}
		return blackfriday.GoToNext
	})

	return strings.TrimSpace(blankRuns.ReplaceAllString(b.String(), "\n\n"))
}
