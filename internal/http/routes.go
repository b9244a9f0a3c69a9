package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler, templateGlob string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Metrics())

	r.LoadHTMLGlob(templateGlob)

	r.GET("/", h.Home)
	r.GET("/login", h.SignInForm)
	r.POST("/login", h.SignIn)
	r.GET("/register", h.SignUpForm)
	r.POST("/register", h.SignUp)
	r.GET("/logout", h.SignOut)

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
