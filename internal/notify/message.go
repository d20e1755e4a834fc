package notify

import (
	"fmt"
	"strings"

	"github.com/shenikar/livestock_alerts/internal/models"
)

const maxShortLength = 320

// Message - текст уведомления, общий для всех каналов
type Message struct {
	Subject string
	Body    string
	Short   string
	Link    string
}

// AlertLink возвращает ссылку на карточку сообщения в портале
func AlertLink(portalURL string, alert *models.Alert) string {
	if portalURL == "" {
		return ""
	}
	return strings.TrimRight(portalURL, "/") + "/alerts/" + alert.ID.String()
}

func Render(alert *models.Alert, portalURL string) Message {
	severity := strings.ToUpper(string(alert.Severity))
	region := alert.Location.District + ", " + alert.Location.State
	link := AlertLink(portalURL, alert)

	var b strings.Builder
	fmt.Fprintf(&b, "A new livestock health alert was reported in your area.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", alert.Title)
	fmt.Fprintf(&b, "Category: %s\n", alert.Category)
	fmt.Fprintf(&b, "Severity: %s\n", severity)
	fmt.Fprintf(&b, "Location: %s\n", region)
	fmt.Fprintf(&b, "Animals: %d %s\n", alert.AffectedAnimals.Count, alert.AffectedAnimals.Species)
	if len(alert.AffectedAnimals.Symptoms) > 0 {
		fmt.Fprintf(&b, "Symptoms: %s\n", strings.Join(alert.AffectedAnimals.Symptoms, ", "))
	}
	fmt.Fprintf(&b, "\n%s\n", alert.Description)
	if link != "" {
		fmt.Fprintf(&b, "\nDetails: %s\n", link)
	}

	short := fmt.Sprintf("[%s] %s - %s. %d %s affected.", severity, alert.Title, region, alert.AffectedAnimals.Count, alert.AffectedAnimals.Species)
	if link != "" {
		short += " " + link
	}
	if r := []rune(short); len(r) > maxShortLength {
		short = string(r[:maxShortLength-1]) + "…"
	}

	return Message{
		Subject: fmt.Sprintf("[%s] Livestock alert: %s", severity, alert.Title),
		Body:    b.String(),
		Short:   short,
		Link:    link,
	}
}
