package usecase

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
	"github.com/comeca-ai/leao-pet-vitality/internal/logging"
)

type EmailType string

const (
	EmailConfirmation    EmailType = "confirmation"
	EmailPaymentSuccess  EmailType = "payment_success"
	EmailPaymentFailed   EmailType = "payment_failed"
	EmailWhatsAppCreated EmailType = "whatsapp_created"
)

// Notifier renders and dispatches transactional order emails. Every call
// site treats it as best-effort: a send failure is logged by the caller
// and never fails the surrounding operation.
type Notifier struct {
	sender EmailSender
	log    *slog.Logger
}

func NewNotifier(sender EmailSender) *Notifier {
	return &Notifier{sender: sender, log: logging.New("notify")}
}

var emailTmpl = template.Must(template.New("order").Parse(`
<h2>{{.Heading}}</h2>
<p>Olá {{.Name}},</p>
<p>{{.Intro}}</p>
<table>
  {{range .Items}}<tr>
    <td>{{.ProductName}}</td>
    <td>{{.Quantity}}x</td>
    <td>R$ {{.UnitPrice}}</td>
  </tr>{{end}}
</table>
<p><strong>Total: R$ {{.Total}}</strong></p>
{{if .WhatsAppLink}}<p><a href="{{.WhatsAppLink}}">Finalizar pelo WhatsApp</a></p>{{end}}
<p>Pedido #{{.Reference}}</p>
`))

type emailData struct {
	Heading      string
	Intro        string
	Name         string
	Reference    string
	Total        string
	Items        []entity.OrderItem
	WhatsAppLink string
}

func subjectFor(t EmailType, reference string) string {
	switch t {
	case EmailConfirmation:
		return fmt.Sprintf("Pedido Confirmado #%s - Juba de Leão", reference)
	case EmailPaymentSuccess:
		return fmt.Sprintf("Pagamento Aprovado #%s - Juba de Leão", reference)
	case EmailPaymentFailed:
		return fmt.Sprintf("Problema no Pagamento #%s - Juba de Leão", reference)
	case EmailWhatsAppCreated:
		return fmt.Sprintf("Pedido via WhatsApp #%s - Juba de Leão", reference)
	default:
		return fmt.Sprintf("Pedido #%s - Juba de Leão", reference)
	}
}

func headingFor(t EmailType) (heading, intro string) {
	switch t {
	case EmailPaymentSuccess:
		return "Pagamento aprovado", "Seu pagamento foi confirmado e o pedido está a caminho."
	case EmailPaymentFailed:
		return "Problema no pagamento", "Não conseguimos processar o pagamento do seu pedido. Tente novamente."
	case EmailWhatsAppCreated:
		return "Pedido recebido", "Recebemos seu pedido. Finalize pelo WhatsApp no link abaixo."
	default:
		return "Pedido confirmado", "Recebemos seu pedido. Obrigado pela compra!"
	}
}

// SendOrderEmail renders the template for emailType and dispatches it to
// the profile's address.
func (n *Notifier) SendOrderEmail(ctx context.Context, profile *entity.Profile, order *entity.Order, emailType EmailType, whatsappLink string) error {
	heading, intro := headingFor(emailType)
	var buf bytes.Buffer
	err := emailTmpl.Execute(&buf, emailData{
		Heading:      heading,
		Intro:        intro,
		Name:         profile.Name,
		Reference:    order.Reference(),
		Total:        order.Total.StringFixed(2),
		Items:        order.Items,
		WhatsAppLink: whatsappLink,
	})
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	if err := n.sender.Send(ctx, profile.Email, subjectFor(emailType, order.Reference()), buf.String()); err != nil {
		return fmt.Errorf("send %s email: %w", emailType, err)
	}
	n.log.InfoContext(ctx, "email sent", "type", emailType, "order_id", order.ID)
	return nil
}
