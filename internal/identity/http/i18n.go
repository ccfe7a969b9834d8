package http

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys are the English text. English needs no catalogue entries.
const (
	msgBadRequest      = "The request body is not valid."
	msgValidation      = "Invalid %s: %s."
	msgInvalidCode     = "This code is invalid or has expired."
	msgNotAuthorized   = "You are not allowed to do that."
	msgPhoneMismatch   = "This code was sent to a different phone number."
	msgOwnerExists     = "This business already has an owner."
	msgTransferExists  = "An ownership transfer is already in progress."
	msgPhoneTaken      = "This phone number is already registered."
	msgIncorrectPIN    = "Incorrect PIN. %d attempts left."
	msgLockedOut       = "Too many incorrect attempts. Try again in %d seconds."
	msgPINRequired     = "Enter your PIN to continue."
	msgPINNotSet       = "Set a PIN first."
	msgPhoneProof      = "Phone verification failed: %s"
	msgInvalidLogin    = "Phone number or password is incorrect."
	msgSessionEnded    = "This session has ended. Sign in again."
	msgNotFound        = "Not found."
	msgInvalidRole     = "That role cannot be used here."
	msgServerError     = "Something went wrong. Please try again."
	msgProofDelivery   = "The verification code could not be sent. Please try again."
	msgProofMalformed  = "the verification token is malformed"
	msgProofExpired    = "the verification has expired"
	msgProofFuture     = "the verification is not valid yet"
	msgProofIssuer     = "the verification came from an unknown provider"
	msgProofAudience   = "the verification was issued for another app"
	msgProofNoPhone    = "the verification has no phone number"
	msgProofWrongPhone = "the verified phone number does not match"
)

var spanish = map[string]string{
	msgBadRequest:      "El cuerpo de la solicitud no es válido.",
	msgValidation:      "%s no válido: %s.",
	msgInvalidCode:     "Este código no es válido o ha caducado.",
	msgNotAuthorized:   "No tienes permiso para hacer eso.",
	msgPhoneMismatch:   "Este código se envió a otro número de teléfono.",
	msgOwnerExists:     "Este negocio ya tiene un propietario.",
	msgTransferExists:  "Ya hay una transferencia de propiedad en curso.",
	msgPhoneTaken:      "Este número de teléfono ya está registrado.",
	msgIncorrectPIN:    "PIN incorrecto. Quedan %d intentos.",
	msgLockedOut:       "Demasiados intentos incorrectos. Inténtalo de nuevo en %d segundos.",
	msgPINRequired:     "Introduce tu PIN para continuar.",
	msgPINNotSet:       "Primero configura un PIN.",
	msgPhoneProof:      "La verificación del teléfono falló: %s",
	msgInvalidLogin:    "El número de teléfono o la contraseña son incorrectos.",
	msgSessionEnded:    "Esta sesión ha terminado. Vuelve a iniciar sesión.",
	msgNotFound:        "No encontrado.",
	msgInvalidRole:     "Ese rol no se puede usar aquí.",
	msgServerError:     "Algo salió mal. Inténtalo de nuevo.",
	msgProofDelivery:   "No se pudo enviar el código de verificación. Inténtalo de nuevo.",
	msgProofMalformed:  "el token de verificación no es válido",
	msgProofExpired:    "la verificación ha caducado",
	msgProofFuture:     "la verificación aún no es válida",
	msgProofIssuer:     "la verificación proviene de un proveedor desconocido",
	msgProofAudience:   "la verificación se emitió para otra aplicación",
	msgProofNoPhone:    "la verificación no tiene número de teléfono",
	msgProofWrongPhone: "el número verificado no coincide",
}

var (
	supported = []language.Tag{language.English, language.Spanish}
	matcher   = language.NewMatcher(supported)
	messages  = newCatalog()
)

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range spanish {
		if err := b.SetString(language.Spanish, key, text); err != nil {
			panic(err)
		}
	}
	return b
}

// printer returns a message printer for the best match of the request's
// Accept-Language header.
func printer(r *http.Request) *message.Printer {
	tags, _, _ := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	_, i, _ := matcher.Match(tags...)
	return message.NewPrinter(supported[i], message.Catalog(messages))
}
