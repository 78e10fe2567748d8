// Package i18n maps backend and SDK message codes onto localized strings.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var messages = map[language.Tag]map[string]string{
	language.English: {
		"NETWORK_ERROR":         "Network error (HTTP %d). Please try again.",
		"SESSION_EXPIRED":       "Your session has expired. Please log in again.",
		"UNKNOWN_ERROR":         "Something went wrong. Please try again.",
		"INVALID_CREDENTIALS":   "Incorrect email or password.",
		"EMAIL_TAKEN":           "An account with this email already exists.",
		"USER_NOT_FOUND":        "We couldn't find that account.",
		"MOOD_INVALID":          "That mood isn't recognised.",
		"MOOD_RATE_LIMITED":     "You're logging moods too quickly. Try again in a minute.",
		"RATE_LIMITED":          "Too many requests. Please slow down.",
		"INSIGHTS_NOT_FOUND":    "No insight report yet.",
		"INSIGHTS_NOT_ENOUGH":   "Log a few more moods before generating insights.",
		"INSIGHTS_COOLDOWN":     "You can generate one insight report every 48 hours.",
		"PASSWORD_MISMATCH":     "Your current password is incorrect.",
		"COUNTRY_INVALID":       "That country isn't supported.",
		"INTERNAL_ERROR":        "The server had a problem. Please try again later.",
		"STATS_SAME_TODAY_DOWN": "Unable to load how others feel today.",
		"STATS_COUNTRIES_DOWN":  "Unable to load country breakdown.",
		"STATS_HOURS_DOWN":      "Unable to load time-of-day breakdown.",
		"STATS_TREND_DOWN":      "Unable to load trend.",
	},
	language.Spanish: {
		"NETWORK_ERROR":         "Error de red (HTTP %d). Inténtalo de nuevo.",
		"SESSION_EXPIRED":       "Tu sesión ha caducado. Vuelve a iniciar sesión.",
		"UNKNOWN_ERROR":         "Algo salió mal. Inténtalo de nuevo.",
		"INVALID_CREDENTIALS":   "Correo o contraseña incorrectos.",
		"EMAIL_TAKEN":           "Ya existe una cuenta con este correo.",
		"USER_NOT_FOUND":        "No encontramos esa cuenta.",
		"MOOD_INVALID":          "Ese estado de ánimo no es válido.",
		"RATE_LIMITED":          "Demasiadas solicitudes. Ve más despacio.",
		"INSIGHTS_NOT_FOUND":    "Todavía no hay informe.",
		"INSIGHTS_COOLDOWN":     "Puedes generar un informe cada 48 horas.",
		"INTERNAL_ERROR":        "El servidor tuvo un problema. Inténtalo más tarde.",
		"STATS_SAME_TODAY_DOWN": "No se pudo cargar cómo se sienten los demás hoy.",
		"STATS_COUNTRIES_DOWN":  "No se pudo cargar el desglose por país.",
		"STATS_HOURS_DOWN":      "No se pudo cargar el desglose por hora.",
		"STATS_TREND_DOWN":      "No se pudo cargar la tendencia.",
	},
}

var builder = func() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for code, msg := range msgs {
			_ = b.SetString(tag, code, msg)
		}
	}
	return b
}()

// supported lists English first so it is the matcher's default.
var matcher = language.NewMatcher([]language.Tag{language.English, language.Spanish})

// Catalog renders message codes in one locale. Missing translations fall back to English.
type Catalog struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Catalog for the best supported match of locale (e.g. "es-MX").
func New(locale string) *Catalog {
	tag, _ := language.MatchStrings(matcher, locale)
	base, _ := tag.Base()
	tag, _ = language.Compose(base)
	return &Catalog{tag: tag, printer: message.NewPrinter(tag, message.Catalog(builder))}
}

// Tag reports the resolved language.
func (c *Catalog) Tag() language.Tag { return c.tag }

// Message returns the localized text for code, or "" when the code is unknown.
func (c *Catalog) Message(code string, args ...any) string {
	if _, ok := messages[language.English][code]; !ok {
		return ""
	}
	return c.printer.Sprintf(code, args...)
}
