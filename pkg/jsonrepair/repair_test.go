package jsonrepair_test

import (
	"encoding/json"
	"testing"

	"github.com/kiranshivaraju/listingshield/pkg/jsonrepair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepair(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid input unchanged", `{"a":1,"b":[1,2]}`, `{"a":1,"b":[1,2]}`},
		{"trailing comma in object", `{"a":1,}`, `{"a":1}`},
		{"trailing comma in array", `[1, 2, ]`, `[1, 2 ]`},
		{"trailing comma before newline", "{\"a\":1,\n}", "{\"a\":1\n}"},
		{"unquoted keys", `{term: "x", risk_level: "high"}`, `{"term": "x", "risk_level": "high"}`},
		{"single quoted strings", `{'term': 'nike'}`, `{"term": "nike"}`},
		{"escaped single quote", `{"reason": 'brand\'s name'}`, `{"reason": "brand's name"}`},
		{"double quote inside single quoted", `['say "hi"']`, `["say \"hi\""]`},
		{"double quoted content untouched", `{"a": "x, } 'y' b: c"}`, `{"a": "x, } 'y' b: c"}`},
		{"literals after comma kept", `[1, true, null]`, `[1, true, null]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jsonrepair.Repair(tt.in))
		})
	}
}

func TestRepair_DecodesRuleFile(t *testing.T) {
	in := `[
  {term: 'rolex', risk_level: 'high', reason: 'Trademarked brand',},
  {term: 'replica', risk_level: 'warning', reason: "Counterfeit signal",},
]`

	var rules []map[string]string
	require.NoError(t, json.Unmarshal([]byte(jsonrepair.Repair(in)), &rules))
	require.Len(t, rules, 2)
	assert.Equal(t, "rolex", rules[0]["term"])
	assert.Equal(t, "warning", rules[1]["risk_level"])
	assert.Equal(t, "Counterfeit signal", rules[1]["reason"])
}

func TestRepair_UnsupportedMalformationPassesThrough(t *testing.T) {
	in := `{"a": 1 "b": 2}`
	out := jsonrepair.Repair(in)
	assert.Equal(t, in, out)
	assert.False(t, json.Valid([]byte(out)))
}
