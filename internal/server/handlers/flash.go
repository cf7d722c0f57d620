package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FlashCookie carries messages across the post/redirect/get of the sale form.
const FlashCookie = "kitstock_flash"

const flashMaxAge = 60

// Browsers drop cookies over 4 KB, so flashes are capped in count and length.
const (
	maxFlashes      = 8
	maxFlashMessage = 200
)

// Flash kinds, matching the alert styles of the layout.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
)

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func setFlashes(c *gin.Context, flashes []Flash) {
	raw, err := json.Marshal(capFlashes(flashes))
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, base64.RawURLEncoding.EncodeToString(raw), flashMaxAge, "/", "", false, true)
}

// popFlashes reads and clears the flash cookie. A tampered cookie yields nothing.
func popFlashes(c *gin.Context) []Flash {
	value, err := c.Cookie(FlashCookie)
	if err != nil || value == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, "", -1, "/", "", false, true)

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}

func dangerFlashes(messages []string) []Flash {
	out := make([]Flash, 0, len(messages))
	for _, m := range messages {
		out = append(out, Flash{Kind: FlashDanger, Message: m})
	}
	return out
}

// capFlashes keeps the first messages, shortens long ones and folds the rest
// into a trailing "…and N more".
func capFlashes(flashes []Flash) []Flash {
	out := make([]Flash, 0, min(len(flashes), maxFlashes))
	for i, f := range flashes {
		if i == maxFlashes-1 && len(flashes) > maxFlashes {
			out = append(out, Flash{Kind: f.Kind, Message: fmt.Sprintf("…and %d more", len(flashes)-i)})
			break
		}
		if r := []rune(f.Message); len(r) > maxFlashMessage {
			f.Message = string(r[:maxFlashMessage-1]) + "…"
		}
		out = append(out, f)
	}
	return out
}
