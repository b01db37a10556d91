package handlers

import (
	"net/http"

	"github.com/decoambiente/decoambiente-backend/internal/site"
	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	WhatsApp string
}

// contactInput accepts the Spanish field names the site form posts and their English twins.
type contactInput struct {
	Nombre  string `json:"nombre" validate:"max=120"`
	Name    string `json:"name" validate:"max=120"`
	Mensaje string `json:"mensaje" validate:"max=2000"`
	Message string `json:"message" validate:"max=2000"`
}

// CreateContactLink returns the WhatsApp link with the visitor's message pre-filled.
func (h *ContactHandler) CreateContactLink(c *gin.Context) {
	var input contactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json body"))
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}

	name := input.Nombre
	if name == "" {
		name = input.Name
	}
	message := input.Mensaje
	if message == "" {
		message = input.Message
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("contact link created", gin.H{
		"whatsappUrl": site.WhatsAppURL(h.WhatsApp, site.ContactMessage(name, message)),
	}))
}
