package generativeAI

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[{"day":1}]`, `[{"day":1}]`},
		{"json fence", "```json\n[{\"day\":1}]\n```", `[{"day":1}]`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"prose around", "Here is your plan:\n[1]\nEnjoy!", `[1]`},
		{"no array", "sorry, I cannot help", "sorry, I cannot help"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONArray(tt.in))
		})
	}
}

func TestCleanJSONObject(t *testing.T) {
	assert.Equal(t, `{"iata":"NRT"}`, CleanJSONObject("```json\n{\"iata\":\"NRT\"}\n```"))
	assert.Equal(t, `{"a":{"b":1}}`, CleanJSONObject(`result: {"a":{"b":1}} done`))
	assert.Equal(t, "}{", CleanJSONObject("}{"))
}
