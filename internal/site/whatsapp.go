package site

import (
	"net/url"
	"strings"
)

const defaultWhatsAppText = "Hola, me contacto desde el sitio web y quisiera consultar sobre sus productos."

// ContactMessage builds the pre-filled WhatsApp text for the contact form.
func ContactMessage(name, message string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "un cliente"
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = "..."
	}
	return "Hola! Me contacto desde la web. Soy " + name + " y quería consultar: " + message
}

// WhatsAppURL returns a wa.me link for number with text pre-filled.
// Non-digits in number are dropped.
func WhatsAppURL(number, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if text == "" {
		text = defaultWhatsAppText
	}
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
