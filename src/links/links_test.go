package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKnownServicesForUrl(t *testing.T) {
	svc, id := ParseKnownServicesForUrl("https://pubmed.ncbi.nlm.nih.gov/31536279/")
	assert.Equal(t, "PubMed", svc.Name)
	assert.Equal(t, "31536279", id)

	svc, id = ParseKnownServicesForUrl("https://doi.org/10.1056/NEJMoa2034577")
	assert.Equal(t, "DOI", svc.Name)
	assert.Equal(t, "10.1056/NEJMoa2034577", id)

	svc, id = ParseKnownServicesForUrl("https://clinicaltrials.gov/study/NCT04280705")
	assert.Equal(t, "ClinicalTrials.gov", svc.Name)
	assert.Equal(t, "NCT04280705", id)

	svc, id = ParseKnownServicesForUrl("https://clinicaltrials.gov/ct2/show/NCT04280705")
	assert.Equal(t, "ClinicalTrials.gov", svc.Name)
	assert.Equal(t, "NCT04280705", id)

	svc, id = ParseKnownServicesForUrl("https://orcid.org/0000-0002-1825-0097")
	assert.Equal(t, "ORCID", svc.Name)
	assert.Equal(t, "0000-0002-1825-0097", id)

	svc, _ = ParseKnownServicesForUrl("https://www.medrxiv.org/content/10.1101/2024.01.15.24301331v1")
	assert.Equal(t, "medRxiv", svc.Name)

	// PubMed lives under nih.gov but must not classify as plain NIH.
	svc, _ = ParseKnownServicesForUrl("https://www.niddk.nih.gov/health-information/diabetes")
	assert.Equal(t, "NIH", svc.Name)

	svc, id = ParseKnownServicesForUrl("https://example.com/some/page")
	assert.Equal(t, "", svc.Name)
	assert.Equal(t, "website", svc.IconName)
	assert.Equal(t, "", id)
}

func TestExtractResearchLinks(t *testing.T) {
	t.Run("classifies in order of appearance", func(t *testing.T) {
		body := "Per https://pubmed.ncbi.nlm.nih.gov/31536279/ and the trial at https://clinicaltrials.gov/study/NCT04280705, results look promising."
		found := ExtractResearchLinks(body)
		assert.Len(t, found, 2)
		assert.Equal(t, "PubMed", found[0].Service)
		assert.Equal(t, "31536279", found[0].Identifier)
		assert.Equal(t, "ClinicalTrials.gov", found[1].Service)
		assert.Equal(t, "NCT04280705", found[1].Identifier)
	})

	t.Run("deduplicates", func(t *testing.T) {
		body := "https://example.com/x then again https://example.com/x"
		found := ExtractResearchLinks(body)
		assert.Len(t, found, 1)
	})

	t.Run("no urls", func(t *testing.T) {
		assert.Len(t, ExtractResearchLinks("no links here, just words"), 0)
	})
}
