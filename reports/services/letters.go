package services

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

const portalName = "Study Abroad Portal"

//go:embed templates/*.html
var templateFS embed.FS

var letterTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type VisaLetterData struct {
	PortalName     string
	Reference      string
	PrintDate      string
	StudentName    string
	StudentEmail   string
	HomeUniversity string
	Country        string
	IssuedDate     string
	ExpiryDate     string
}

type HousingLetterData struct {
	PortalName     string
	Reference      string
	PrintDate      string
	StudentName    string
	UniversityName string
	Location       string
	RoomType       string
	Rent           string
	AllotmentDate  string
}

func renderLetter(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := letterTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// reference is the short printed identifier of a letter.
func reference(prefix, id string) string {
	short := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(short) > 10 {
		short = short[:10]
	}
	return prefix + "-" + short
}
