package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTagText(t *testing.T) {
	assert.True(t, ValidateTagText(""))
	assert.True(t, ValidateTagText("research"))
	assert.True(t, ValidateTagText("type-2-diabetes"))
	assert.False(t, ValidateTagText("Research"))
	assert.False(t, ValidateTagText("-research"))
	assert.False(t, ValidateTagText("research-"))
	assert.False(t, ValidateTagText("spaces in tags"))
	assert.False(t, ValidateTagText("this-tag-is-way-too-long"))
}

func TestNormalizeConditionTags(t *testing.T) {
	assert.Equal(t, []string{"type 2 diabetes"}, NormalizeConditionTags([]string{"  Type 2   Diabetes "}))
	assert.Equal(t,
		[]string{"diabetes", "hypertension"},
		NormalizeConditionTags([]string{"Diabetes", "hypertension", "DIABETES"}),
	)
	assert.Nil(t, NormalizeConditionTags([]string{"", "   "}))
	assert.Nil(t, NormalizeConditionTags(nil))
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "new insulin study", NormalizeTitle("  New   Insulin\tStudy "))
	assert.Equal(t, NormalizeTitle("Sleep Apnea and CPAP"), NormalizeTitle("sleep  apnea and cpap"))
	assert.NotEqual(t, NormalizeTitle("insulin study"), NormalizeTitle("insulin studies"))
}
