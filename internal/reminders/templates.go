package reminders

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/wolfman30/podology-frontdesk/internal/datekey"
)

// MessageTemplate renders the WhatsApp reminder text for a notification type.
func MessageTemplate(t NotificationType, patientName, date, clock string) string {
	name := strings.TrimSpace(patientName)
	if name == "" {
		name = "paciente"
	}
	formatted := datekey.FormatBR(date)

	switch t {
	case DayBefore:
		return fmt.Sprintf(
			"🦶 *Lembrete de Consulta - Podologia*\n\n"+
				"Olá %s! 👋\n\n"+
				"Este é um lembrete de que você tem uma consulta agendada para *amanhã* (%s) às *%s*.\n\n"+
				"Por favor, confirme sua presença respondendo:\n"+
				"✅ *CONFIRMO* - se você comparecerá\n"+
				"❌ *CANCELAR* - se precisar cancelar\n\n"+
				"📍 Não se esqueça de trazer documentos e chegar com 10 minutos de antecedência.\n\n"+
				"Obrigado!",
			name, formatted, clock,
		)
	default:
		return fmt.Sprintf(
			"🦶 *Lembrete de Consulta - Podologia*\n\n"+
				"Olá %s! 👋\n\n"+
				"Sua consulta está próxima!\n\n"+
				"📅 Data: *%s*\n"+
				"🕐 Horário: *%s*\n\n"+
				"Você tem aproximadamente *1h30* para se preparar.\n\n"+
				"Por favor, confirme que está a caminho respondendo:\n"+
				"✅ *A CAMINHO* - se você está se dirigindo ao local\n"+
				"❌ *ATRASO* - se você vai se atrasar\n"+
				"❌ *CANCELAR* - se não puder comparecer\n\n"+
				"📍 Lembre-se de chegar com 10 minutos de antecedência.\n\n"+
				"Até logo!",
			name, formatted, clock,
		)
	}
}

// DeliveryLink builds a wa.me link with the message prefilled. The contact is
// reduced to digits and prefixed with countryCode when it does not already
// start with it.
func DeliveryLink(contact, countryCode, message string) string {
	digits := digitsOnly(contact)
	cc := digitsOnly(countryCode)
	if cc != "" && !strings.HasPrefix(digits, cc) {
		digits = cc + digits
	}
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + encoded
}

func digitsOnly(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
