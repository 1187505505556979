package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The fragment template's name starts with an underscore, which a plain
// directory embed pattern would skip. Rendering it here guards the embed
// directive itself.
func TestChatFragmentTemplateEmbedded(t *testing.T) {
	_, err := templateFS.ReadFile("templates/_chat_messages.html")
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	renderChatFragment(rr, conversationData{Recipient: "bob"})
	assert.Contains(t, rr.Body.String(), "No messages yet. Say hi!")
}

func TestAllPagesParsed(t *testing.T) {
	for _, name := range pageNames {
		assert.NotNil(t, pages[name], name)
	}
}
