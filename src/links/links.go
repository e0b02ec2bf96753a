package links

import (
	"regexp"

	"mvdan.cc/xurls/v2"
)

// An online research service for which we recognize the link
type Service struct {
	Name     string
	IconName string
	Regex    *regexp.Regexp
}

// Ordered most-specific first; several of these live under nih.gov and must
// win before the catch-all NIH entry.
var Services = []Service{
	{
		Name:     "PubMed",
		IconName: "pubmed",
		Regex:    regexp.MustCompile(`^https?://pubmed\.ncbi\.nlm\.nih\.gov/(?P<id>\d+)`),
	},
	{
		Name:     "PubMed Central",
		IconName: "pubmed",
		Regex:    regexp.MustCompile(`^https?://www\.ncbi\.nlm\.nih\.gov/pmc/articles/(?P<id>PMC\d+)`),
	},
	{
		Name:     "DOI",
		IconName: "doi",
		Regex:    regexp.MustCompile(`^https?://(dx\.)?doi\.org/(?P<id>10\.\d{4,9}/\S+)`),
	},
	{
		Name:     "ClinicalTrials.gov",
		IconName: "clinical-trials",
		Regex:    regexp.MustCompile(`^https?://(www\.)?clinicaltrials\.gov/(ct2/show/|study/)?(?P<id>NCT\d+)`),
	},
	{
		Name:     "ORCID",
		IconName: "orcid",
		Regex:    regexp.MustCompile(`^https?://orcid\.org/(?P<id>\d{4}-\d{4}-\d{4}-\d{3}[\dX])`),
	},
	{
		Name:     "medRxiv",
		IconName: "preprint",
		Regex:    regexp.MustCompile(`^https?://(www\.)?medrxiv\.org/content/(?P<id>10\.\d{4,9}/\S+)`),
	},
	{
		Name:     "bioRxiv",
		IconName: "preprint",
		Regex:    regexp.MustCompile(`^https?://(www\.)?biorxiv\.org/content/(?P<id>10\.\d{4,9}/\S+)`),
	},
	{
		Name:     "Cochrane Library",
		IconName: "cochrane",
		Regex:    regexp.MustCompile(`^https?://(www\.)?cochranelibrary\.com`),
	},
	{
		Name:     "NIH",
		IconName: "nih",
		Regex:    regexp.MustCompile(`^https?://([\w-]+\.)*nih\.gov`),
	},
	{
		Name:     "WHO",
		IconName: "who",
		Regex:    regexp.MustCompile(`^https?://(www\.)?who\.int`),
	},
	{
		Name:     "GitHub",
		IconName: "github",
		Regex:    regexp.MustCompile(`^https?://github\.com/(?P<id>[\w/-]+)`),
	},
}

func ParseKnownServicesForUrl(url string) (service Service, identifier string) {
	for _, svc := range Services {
		match := svc.Regex.FindStringSubmatch(url)
		if match != nil {
			identifier := ""
			if idx := svc.Regex.SubexpIndex("id"); idx >= 0 {
				identifier = match[idx]
			}

			return svc, identifier
		}
	}
	return Service{
		IconName: "website",
	}, ""
}

// One URL found in a body, with the service we recognized it as, if any.
type Link struct {
	Url        string `json:"url"`
	Service    string `json:"service,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

var urlFinder = xurls.Strict()

// ExtractResearchLinks pulls every absolute URL out of a raw body and
// classifies it. Links come back in order of first appearance, once each.
func ExtractResearchLinks(body string) []Link {
	urls := urlFinder.FindAllString(body, -1)

	var result []Link
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true

		svc, id := ParseKnownServicesForUrl(u)
		result = append(result, Link{
			Url:        u,
			Service:    svc.Name,
			Identifier: id,
		})
	}
	return result
}
