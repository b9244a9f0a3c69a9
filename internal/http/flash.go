package http

import "github.com/gin-gonic/gin"

const flashCookie = "flash"

// Flash notices ride a short-lived cookie: written on redirect, read and
// cleared on the next render.
func setFlash(c *gin.Context, msg string) {
	c.SetCookie(flashCookie, msg, 60, "/", "", false, true)
}

func takeFlash(c *gin.Context) string {
	msg, err := c.Cookie(flashCookie)
	if err != nil || msg == "" {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	return msg
}
