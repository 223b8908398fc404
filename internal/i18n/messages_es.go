package i18n

import (
	"eventmanager/internal/domain"

	"golang.org/x/text/language"
)

func init() {
	register(language.Spanish, map[string]string{
		domain.KeyEventNotFound:          "Evento no encontrado.",
		domain.KeyEventCancelled:         "El evento ha sido cancelado.",
		domain.KeyPersonNotFound:         "Persona no encontrada.",
		domain.KeyPersonRequired:         "Indica el id de una persona o sus datos, no ambos.",
		domain.KeyPersonDataInvalid:      "Se requieren nombre, apellido y un email válido.",
		domain.KeySpeakerNotFound:        "Ponente no encontrado para este evento.",
		domain.KeySpeakerRequired:        "Las cortesías de sesiones de ponente requieren un id de ponente.",
		domain.KeyCourtesyNotFound:       "Cortesía no encontrada.",
		domain.KeyAlreadyGranted:         "Esta persona ya tiene una cortesía para el evento.",
		domain.KeyBlocksRequired:         "Este alcance requiere al menos un bloque.",
		domain.KeyBlocksInvalid:          "Uno o más bloques no existen, están inactivos o pertenecen a otro evento.",
		domain.KeyInvalidType:            "Tipo de cortesía desconocido.",
		domain.KeyInvalidScope:           "Alcance de cortesía desconocido.",
		domain.KeyNotActive:              "Solo se pueden cancelar cortesías activas.",
		domain.KeyCancelReasonRequired:   "Se requiere un motivo de cancelación.",
		domain.KeyNoSpeakers:             "El evento no tiene ponentes.",
		domain.KeyConcurrentModification: "La solicitud entró en conflicto con otro cambio. Inténtalo de nuevo.",
		domain.KeyInvalidTransition:      "Transición de estado de cortesía no válida.",
		domain.KeyEventIDRequired:        "Se requiere el id del evento.",
		domain.KeyInternal:               "Algo salió mal.",
		domain.KeyUnauthorized:           "Se requiere autenticación.",
		domain.KeyBadRequest:             "Solicitud no válida.",

		domain.CourtesyScopeFullEvent.LabelKey():       "Acceso a todo el evento",
		domain.CourtesyScopeSpecificBlocks.LabelKey():  "Sesiones seleccionadas",
		domain.CourtesyScopeAssignedSession.LabelKey(): "Tus sesiones como ponente",
	})
}
