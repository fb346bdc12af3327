package digest

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// renderMarkdown produces the digest body. Output is deterministic for a
// given section list so regenerating an unchanged digest is a no-op diff.
func renderMarkdown(title string, sections []Section) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)

	if len(sections) == 0 {
		b.WriteString("No qualifying items today.\n")
		return b.String()
	}

	b.WriteString("## Contents\n\n")
	for _, section := range sections {
		fmt.Fprintf(&b, "- %s (%d)\n", sectionHeading(section.Category), len(section.Items))
	}
	b.WriteString("\n")

	for _, section := range sections {
		fmt.Fprintf(&b, "## %s\n\n", sectionHeading(section.Category))
		for i, item := range section.Items {
			fmt.Fprintf(&b, "%d. **%s**\n", i+1, item.ItemTitle)
			if item.Summary != "" {
				fmt.Fprintf(&b, "   %s\n", item.Summary)
			}
			fmt.Fprintf(&b, "   [%s](https://%s)\n\n", displayHost(item.CanonicalURL), item.CanonicalURL)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func sectionHeading(category string) string {
	switch category {
	case "ai":
		return "AI"
	case "web3":
		return "Web3"
	default:
		return titleCaser.String(category)
	}
}

// displayHost extracts the host portion of a canonical URL for link text.
// Canonical URLs are stored without a scheme.
func displayHost(url string) string {
	host, _, found := strings.Cut(url, "/")
	if !found {
		host = url
	}
	if host == "" {
		return url
	}
	return host
}
