package i18n

import "fmt"

// Key identifies a user-facing message.
type Key string

const (
	AskIdentifier       Key = "ask_identifier"
	IdentifierInvalid   Key = "identifier_invalid"
	ChooseInvoice       Key = "choose_invoice"
	AskDateOfBirth      Key = "ask_date_of_birth"
	DateOfBirthMismatch Key = "date_of_birth_mismatch"
	Verified            Key = "verified"
	GenericError        Key = "generic_error"
	EscalationOffer     Key = "escalation_offer"
	EscalationConfirm   Key = "escalation_confirm"
	EscalationDecline   Key = "escalation_decline"
	FeedbackPositive    Key = "feedback_positive"
	FeedbackNegative    Key = "feedback_negative"
	Typing              Key = "typing"
	LabelLatest         Key = "label_latest"
	LabelOldest         Key = "label_oldest"
)

var catalogue = map[Language]map[Key]string{
	English: {
		AskIdentifier:       "Please enter your customer number or invoice number to continue.",
		IdentifierInvalid:   "We could not find that number. Please check it and try again.",
		ChooseInvoice:       "We found several invoices for your customer number. Which one would you like to discuss?",
		AskDateOfBirth:      "For your security, please confirm your date of birth (YYYY-MM-DD).",
		DateOfBirthMismatch: "The date of birth does not match our records. Please try again.",
		Verified:            "Thank you, you are verified. How can I help with your bill?",
		GenericError:        "Connection error. Please try again.",
		EscalationOffer:     "Would you like to contact your service provider?",
		EscalationConfirm:   "Your request has been forwarded! Support will contact you within 24 hours.",
		EscalationDecline:   "Is there anything else I can help you with? Feel free to ask.",
		FeedbackPositive:    "Thank you for your feedback!",
		FeedbackNegative:    "I'm sorry this wasn't helpful.",
		Typing:              "KlarBill is analyzing your bill...",
		LabelLatest:         "latest",
		LabelOldest:         "oldest",
	},
	German: {
		AskIdentifier:       "Bitte geben Sie Ihre Kundennummer oder Rechnungsnummer ein, um fortzufahren.",
		IdentifierInvalid:   "Diese Nummer wurde nicht gefunden. Bitte prüfen Sie die Eingabe.",
		ChooseInvoice:       "Zu Ihrer Kundennummer gibt es mehrere Rechnungen. Welche möchten Sie besprechen?",
		AskDateOfBirth:      "Bitte bestätigen Sie zu Ihrer Sicherheit Ihr Geburtsdatum (JJJJ-MM-TT).",
		DateOfBirthMismatch: "Das Geburtsdatum stimmt nicht überein. Bitte versuchen Sie es erneut.",
		Verified:            "Vielen Dank, Sie sind verifiziert. Wie kann ich Ihnen mit Ihrer Rechnung helfen?",
		GenericError:        "Verbindungsfehler. Bitte versuchen Sie es erneut.",
		EscalationOffer:     "Möchten Sie Ihren Anbieter kontaktieren?",
		EscalationConfirm:   "Ihre Anfrage wurde weitergeleitet! Der Support meldet sich innerhalb von 24 Stunden.",
		EscalationDecline:   "Gibt es etwas anderes, womit ich Ihnen helfen kann? Fragen Sie gerne.",
		FeedbackPositive:    "Danke für Ihr Feedback!",
		FeedbackNegative:    "Es tut mir leid, dass dies nicht hilfreich war.",
		Typing:              "KlarBill analysiert Ihre Rechnung...",
		LabelLatest:         "neueste",
		LabelOldest:         "älteste",
	},
}

// T returns the message for key in lang, falling back to English.
func T(lang Language, key Key) string {
	if msg, ok := catalogue[Normalize(string(lang))][key]; ok {
		return msg
	}
	return catalogue[English][key]
}

// Greeting renders the welcome line for a display name.
func Greeting(lang Language, name string) string {
	if name == "" {
		name = DefaultName(lang)
	}
	if Normalize(string(lang)) == German {
		return fmt.Sprintf("Hallo %s! Wie kann ich Ihnen mit Ihrer Rechnung helfen?", name)
	}
	return fmt.Sprintf("Hello %s! How can I help with your bill today?", name)
}

// DefaultName is used when no customer name is known.
func DefaultName(lang Language) string {
	if Normalize(string(lang)) == German {
		return "Kunde"
	}
	return "Customer"
}
