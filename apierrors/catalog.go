// Package apierrors holds the structured API error type and the catalog that maps
// stable error codes onto user-facing messages.
package apierrors

// Catalog maps error codes to locale-facing messages. A Catalog is read-only after
// construction; With returns a copy.
type Catalog struct {
	messages map[string]string
}

var english = map[string]string{
	CodeValidation:            "Some of the information provided is invalid.",
	CodeInternal:              "An internal error occurred.",
	CodeOverCapacity:          "The service is temporarily overloaded. Please try again.",
	CodeNetworkException:      "Unable to reach the service.",
	CodeTimeout:               "The request timed out.",
	CodeInvalidJSON:           "The server returned an invalid response.",
	CodeInvalidRequest:        "The request could not be prepared.",
	CodeUnauthorized:          "Your session is no longer valid. Please sign in again.",
	CodeForbidden:             "You are not allowed to perform this action.",
	CodeNotFound:              "The requested resource was not found.",
	CodeConflict:              "The resource was modified by someone else.",
	CodeRefreshTokenReuse:     "Your session was ended for security reasons. Please sign in again.",
	CodeNoSession:             "No active session.",
	CodeUploadTooLarge:        "The document exceeds the maximum allowed size.",
	CodeUnsupportedFileType:   "This file type is not supported.",
	CodeInvalidURLScheme:      "Only http/https URLs are allowed.",
	CodeInvalidURL:            "The URL provided is invalid.",
	CodeBlockedHost:           "This address is not allowed.",
	CodeBlockedPrivateNetwork: "Private networks are not allowed.",
	CodeDNSResolutionFailed:   "Unable to resolve the requested domain.",
	CodeNetworkHTTPError:      "HTTP error while downloading.",
	CodeNetworkURLError:       "Network error while downloading.",
	CodeNetworkTimeout:        "The network timeout was exceeded.",
	CodeFileNotFound:          "The requested source could not be found.",
	CodeExtractTimeout:        "The extraction timeout was exceeded.",
	CodeAPIKeyDisabled:        "The AI API key is disabled.",
	CodeUnknown:               "An unknown error occurred.",
}

var french = map[string]string{
	CodeValidation:            "Certaines informations saisies sont invalides.",
	CodeInternal:              "Une erreur interne est survenue.",
	CodeOverCapacity:          "Le service est momentanément surchargé. Veuillez réessayer.",
	CodeNetworkException:      "Impossible de contacter le service.",
	CodeTimeout:               "Le délai de la requête a été dépassé.",
	CodeInvalidJSON:           "Réponse serveur invalide.",
	CodeInvalidRequest:        "La requête n'a pas pu être préparée.",
	CodeUnauthorized:          "Votre session n'est plus valide. Veuillez vous reconnecter.",
	CodeForbidden:             "Vous n'êtes pas autorisé à effectuer cette action.",
	CodeNotFound:              "La ressource demandée est introuvable.",
	CodeConflict:              "La ressource a été modifiée entre-temps.",
	CodeRefreshTokenReuse:     "Votre session a été fermée par sécurité. Veuillez vous reconnecter.",
	CodeNoSession:             "Aucune session active.",
	CodeUploadTooLarge:        "Le document dépasse la taille maximale autorisée.",
	CodeUnsupportedFileType:   "Ce type de fichier n'est pas pris en charge.",
	CodeInvalidURLScheme:      "Seules les URL http/https sont autorisées.",
	CodeInvalidURL:            "L'URL fournie est invalide.",
	CodeBlockedHost:           "Cette adresse n'est pas autorisée.",
	CodeBlockedPrivateNetwork: "Les réseaux privés ne sont pas autorisés.",
	CodeDNSResolutionFailed:   "Impossible de résoudre le domaine demandé.",
	CodeNetworkHTTPError:      "Erreur HTTP pendant le téléchargement.",
	CodeNetworkURLError:       "Erreur réseau pendant le téléchargement.",
	CodeNetworkTimeout:        "Le délai réseau a été dépassé.",
	CodeFileNotFound:          "La source demandée est introuvable.",
	CodeExtractTimeout:        "Le délai d'extraction a été dépassé.",
	CodeAPIKeyDisabled:        "La clé API IA est désactivée.",
	CodeUnknown:               "Une erreur inconnue est survenue.",
}

var defaultCatalog = NewCatalog(english)

// NewCatalog builds a catalog from messages. The map is copied. A catalog without an
// entry for CodeUnknown gets the English one.
func NewCatalog(messages map[string]string) Catalog {
	m := make(map[string]string, len(messages)+1)
	for code, msg := range messages {
		m[code] = msg
	}
	if _, ok := m[CodeUnknown]; !ok {
		m[CodeUnknown] = english[CodeUnknown]
	}
	return Catalog{messages: m}
}

// Default returns the English catalog.
func Default() Catalog {
	return defaultCatalog
}

// French returns the French catalog.
func French() Catalog {
	return NewCatalog(french)
}

// With returns a copy of the catalog with overrides applied.
func (c Catalog) With(overrides map[string]string) Catalog {
	m := make(map[string]string, len(c.messages)+len(overrides))
	for code, msg := range c.messages {
		m[code] = msg
	}
	for code, msg := range overrides {
		m[code] = msg
	}
	return NewCatalog(m)
}

// MessageFor returns the message for code, or the unknown message when code is empty
// or not in the catalog.
func (c Catalog) MessageFor(code string) string {
	if c.messages == nil {
		return defaultCatalog.MessageFor(code)
	}
	if msg, ok := c.messages[code]; ok && code != "" {
		return msg
	}
	return c.messages[CodeUnknown]
}

// Has reports whether code has its own entry.
func (c Catalog) Has(code string) bool {
	_, ok := c.messages[code]
	return ok
}

// MessageFor looks code up in the default catalog.
func MessageFor(code string) string {
	return defaultCatalog.MessageFor(code)
}
