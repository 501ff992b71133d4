package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AppHandler responde con la informacion de la aplicacion.
type AppHandler struct {
	name    string
	version string
}

func NewAppHandler(name, version string) *AppHandler {
	return &AppHandler{name: name, version: version}
}

// Info maneja GET /.
func (h *AppHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"name": h.name, "version": h.version})
}
