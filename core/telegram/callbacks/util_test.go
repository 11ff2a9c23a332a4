package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	tele "gopkg.in/telebot.v4"
)

func TestParseData(t *testing.T) {
	cases := []struct {
		in, key, payload string
	}{
		{"check_join", "check_join", ""},
		{" lang_id ", "lang_id", ""},
		{"\fsend_now", "send_now", ""},
		{"\fpick|42", "pick", "42"},
		{"a|b|c", "a", "b|c"},
		{"", "", ""},
	}
	for _, tc := range cases {
		key, payload := ParseData(tc.in)
		assert.Equal(t, tc.key, key, tc.in)
		assert.Equal(t, tc.payload, payload, tc.in)
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "", Key(nil))
	assert.Equal(t, "edit_msg", Key(&tele.Callback{Data: "edit_msg"}))
	assert.Equal(t, "send_now", Key(&tele.Callback{Unique: "send_now", Data: "\fsend_now"}))
}
