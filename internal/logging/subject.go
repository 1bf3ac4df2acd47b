package logging

import "strings"

// FormatSubject builds the project/slide/stage subject used in console output,
// for example "talk/talk-03 (audio)".
func FormatSubject(projectID, slideID, stage string) string {
	projectID = strings.TrimSpace(projectID)
	slideID = strings.TrimSpace(slideID)
	stage = strings.TrimSpace(stage)

	var b strings.Builder
	b.WriteString(projectID)
	if slideID != "" {
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(slideID)
	}
	if stage != "" {
		if b.Len() > 0 {
			b.WriteString(" (" + stage + ")")
		} else {
			b.WriteString(stage)
		}
	}
	return b.String()
}
