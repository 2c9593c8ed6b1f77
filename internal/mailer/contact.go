package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dom/jbf-storefront/internal/domain"
)

// excerptLength bounds the message quote in the acknowledgement.
const excerptLength = 300

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ContactNotifier renders and sends the two contact-intake emails.
type ContactNotifier struct {
	sender   Sender
	admin    string
	siteName string
}

func NewContactNotifier(sender Sender, adminAddress, siteName string) *ContactNotifier {
	return &ContactNotifier{sender: sender, admin: adminAddress, siteName: siteName}
}

type contactView struct {
	SiteName  string
	ID        string
	Name      string
	Email     string
	Phone     string
	Message   string
	Excerpt   string
	Submitted string
}

func (n *ContactNotifier) view(c *domain.ContactRequest) contactView {
	v := contactView{
		SiteName:  n.siteName,
		ID:        c.ID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Message:   c.Message,
		Excerpt:   Excerpt(c.Message, excerptLength),
		Submitted: c.CreatedAt.UTC().Format(time.RFC1123),
	}
	if c.Phone != nil {
		v.Phone = *c.Phone
	}
	return v
}

// NotifyAdmin sends the submitter's details to the shop inbox with Reply-To set
// to the submitter.
func (n *ContactNotifier) NotifyAdmin(ctx context.Context, c *domain.ContactRequest) error {
	if n.admin == "" {
		return ErrNotConfigured
	}
	v := n.view(c)
	html, err := render("admin_notice.html", v)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		To:      n.admin,
		ReplyTo: c.Email,
		Subject: fmt.Sprintf("[%s] New contact request from %s", n.siteName, c.Name),
		HTML:    html,
		Text:    fmt.Sprintf("%s <%s> wrote:\n\n%s\n\nRequest ID: %s", c.Name, c.Email, c.Message, v.ID),
	})
}

// AcknowledgeSubmitter confirms receipt to the person who wrote in.
func (n *ContactNotifier) AcknowledgeSubmitter(ctx context.Context, c *domain.ContactRequest) error {
	v := n.view(c)
	html, err := render("acknowledgement.html", v)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		To:      c.Email,
		Subject: fmt.Sprintf("We received your message - %s", n.siteName),
		HTML:    html,
		Text:    fmt.Sprintf("Hello %s,\n\nWe received your message and will get back to you shortly.\n\n\"%s\"", c.Name, v.Excerpt),
	})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Excerpt shortens s to at most limit runes, breaking on a word when possible.
func Excerpt(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:limit])
	if i := strings.LastIndexAny(cut, " \n\t"); i > limit/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " \n\t.,;") + "…"
}
