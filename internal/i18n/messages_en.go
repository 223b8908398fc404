package i18n

import (
	"eventmanager/internal/domain"

	"golang.org/x/text/language"
)

func init() {
	register(language.English, map[string]string{
		domain.KeyEventNotFound:          "Event not found.",
		domain.KeyEventCancelled:         "The event has been cancelled.",
		domain.KeyPersonNotFound:         "Person not found.",
		domain.KeyPersonRequired:         "Provide either a person id or person data, not both.",
		domain.KeyPersonDataInvalid:      "First name, last name and a valid email are required.",
		domain.KeySpeakerNotFound:        "Speaker not found for this event.",
		domain.KeySpeakerRequired:        "A speaker id is required for speaker session courtesies.",
		domain.KeyCourtesyNotFound:       "Courtesy not found.",
		domain.KeyAlreadyGranted:         "This person already holds a courtesy for the event.",
		domain.KeyBlocksRequired:         "At least one block is required for this scope.",
		domain.KeyBlocksInvalid:          "One or more blocks are missing, inactive or belong to another event.",
		domain.KeyInvalidType:            "Unknown courtesy type.",
		domain.KeyInvalidScope:           "Unknown courtesy scope.",
		domain.KeyNotActive:              "Only active courtesies can be cancelled.",
		domain.KeyCancelReasonRequired:   "A cancellation reason is required.",
		domain.KeyNoSpeakers:             "The event has no speakers.",
		domain.KeyConcurrentModification: "The request conflicted with a concurrent change. Please retry.",
		domain.KeyInvalidTransition:      "Invalid courtesy status transition.",
		domain.KeyEventIDRequired:        "An event id is required.",
		domain.KeyInternal:               "Something went wrong.",
		domain.KeyUnauthorized:           "Authentication required.",
		domain.KeyBadRequest:             "Invalid request.",

		domain.CourtesyScopeFullEvent.LabelKey():       "Full event access",
		domain.CourtesyScopeSpecificBlocks.LabelKey():  "Selected sessions",
		domain.CourtesyScopeAssignedSession.LabelKey(): "Your speaker sessions",
	})
}
