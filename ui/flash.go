package ui

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie = "flash"
	flashKey    = "flash_messages"
)

// flash queues one-shot messages for the next rendered page
func flash(c *gin.Context, messages ...string) {
	pending := append(peekFlashes(c), messages...)
	c.Set(flashKey, pending)
	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}
	setCookie(c, flashCookie, base64.RawURLEncoding.EncodeToString(raw), 0)
}

// takeFlashes returns the queued messages and clears them
func takeFlashes(c *gin.Context) []string {
	messages := peekFlashes(c)
	c.Set(flashKey, []string{})
	if _, err := c.Cookie(flashCookie); err == nil {
		setCookie(c, flashCookie, "", -1)
	}
	return messages
}

func peekFlashes(c *gin.Context) []string {
	if v, ok := c.Get(flashKey); ok {
		return v.([]string)
	}
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var messages []string
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil
	}
	return messages
}

func setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", false, true)
}
