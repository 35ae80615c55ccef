package service

import (
	"crypto/tls"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/sirupsen/logrus"

	"billing-analytics/internal/analytics"
	"billing-analytics/internal/model"
)

type SMTPConfig struct {
	Host               string
	Port               int
	User               string
	Password           string
	Enabled            bool
	InsecureSkipVerify bool
}

// mailDialer - часть mail.Dialer, нужная для отправки
type mailDialer interface {
	DialAndSend(m ...*mail.Message) error
}

type EmailSender struct {
	dialer  mailDialer
	from    string
	logger  *logrus.Logger
	enabled bool
}

func NewEmailSender(cfg SMTPConfig, logger *logrus.Logger) *EmailSender {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	return &EmailSender{
		dialer:  d,
		from:    cfg.User,
		logger:  logger,
		enabled: cfg.Enabled,
	}
}

// SendAnomalyAlert уведомляет абонента о найденных аномалиях в счетах
func (es *EmailSender) SendAnomalyAlert(user model.User, summary model.AnomalySummary) error {
	if !es.enabled {
		es.logger.Warn("Отправка уведомлений отключена")
		return nil
	}

	var rows strings.Builder
	for _, f := range summary.Findings {
		fmt.Fprintf(&rows, "<li><strong>%s</strong> (%s): %s, изменение %s</li>",
			html.EscapeString(f.Period),
			html.EscapeString(string(f.Type)),
			html.EscapeString(f.Reason),
			f.Delta.StringFixed(analytics.MoneyPlaces))
	}

	subject := fmt.Sprintf("Необычные начисления в счетах: %d", summary.Total)
	content := fmt.Sprintf(`
		<h1>Проверка счетов</h1>
		<p>Здравствуйте, %s!</p>
		<p>За последние %d мес. мы нашли необычные изменения в ваших счетах:</p>
		<ul>%s</ul>
		<p>Дата проверки: <strong>%s</strong></p>
		<small>Это автоматическое уведомление, пожалуйста, не отвечайте на него</small>
	`, html.EscapeString(user.Name), summary.Months, rows.String(), time.Now().Format("02.01.2006 15:04"))

	return es.sendEmail(user.Email, subject, content)
}

func (es *EmailSender) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := es.dialer.DialAndSend(m); err != nil {
		es.logger.WithError(err).Error("Ошибка отправки email")
		return fmt.Errorf("не удалось отправить email: %w", err)
	}

	es.logger.Infof("Email успешно отправлен на %s", to)
	return nil
}
