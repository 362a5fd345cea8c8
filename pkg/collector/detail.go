package collector

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DescriptionFormat selects how vacancy descriptions are stored.
type DescriptionFormat string

const (
	// DescriptionHTML keeps the API's HTML with line breaks collapsed.
	DescriptionHTML DescriptionFormat = "html"

	// DescriptionText strips markup and collapses all whitespace.
	DescriptionText DescriptionFormat = "text"
)

// DetailFields are the enrichment fields taken from /vacancies/{id}.
type DetailFields struct {
	Skills      string
	Description string
}

// FetchListingDetail fetches skills and description for one vacancy.
// Failures are logged and yield empty fields; they never reach the caller.
func (c *Collector) FetchListingDetail(ctx context.Context, id string) DetailFields {
	detail, err := c.api.Vacancy(ctx, id)
	if err != nil {
		c.logger.Warn().Err(err).Str("vacancy_id", id).Msg("Failed to fetch vacancy details")
		return DetailFields{}
	}

	names := make([]string, 0, len(detail.KeySkills))
	for _, skill := range detail.KeySkills {
		names = append(names, skill.Name)
	}

	return DetailFields{
		Skills:      strings.Join(names, ", "),
		Description: normalizeDescription(detail.Description, c.config.DescriptionFormat),
	}
}

const blockElements = "p, br, li, ul, ol, div, h1, h2, h3, h4, h5, h6, tr, td"

func normalizeDescription(desc string, format DescriptionFormat) string {
	if format == DescriptionText && desc != "" {
		if text, ok := htmlToText(desc); ok {
			return text
		}
	}
	return strings.TrimSpace(strings.ReplaceAll(desc, "\n", " "))
}

func htmlToText(fragment string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", false
	}
	// Block boundaries would otherwise glue words of adjacent paragraphs together.
	doc.Find(blockElements).AfterHtml(" ")
	return strings.Join(strings.Fields(doc.Text()), " "), true
}
