package thumbnail

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultStyle is used when the caller names no style or an unknown one.
const DefaultStyle = "mrbeast"

// StyleTemplate is a named prompt fragment describing a visual aesthetic.
type StyleTemplate struct {
	ID     string
	Prompt string
}

// StyleInfo is the client-facing view of a template.
type StyleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var styleTemplates = []StyleTemplate{
	{ID: "mrbeast", Prompt: "Ultra-dramatic, high-energy YouTube thumbnail in MrBeast style: vibrant colors, shocked facial expressions, bold yellow and red text overlays, dynamic composition with explosive elements, professional studio lighting"},
	{ID: "lifestyle", Prompt: "Clean, aesthetic lifestyle YouTube thumbnail: soft pastel colors, minimalist composition, bright natural lighting, aspirational mood, clean typography"},
	{ID: "tech", Prompt: "Modern tech YouTube thumbnail: sleek design, gradient backgrounds, glowing elements, futuristic aesthetics, bold contrasting colors, clean product shots"},
	{ID: "gaming", Prompt: "Epic gaming YouTube thumbnail: dramatic action scenes, neon colors, dynamic angles, intense character expressions, glowing effects, bold game-style typography"},
	{ID: "business", Prompt: "Professional business YouTube thumbnail: clean corporate aesthetic, confident poses, modern office backgrounds, sophisticated color palette, authoritative presence"},
}

var stylesByID = func() map[string]StyleTemplate {
	m := make(map[string]StyleTemplate, len(styleTemplates))
	for _, s := range styleTemplates {
		m[s.ID] = s
	}
	return m
}()

// LookupStyle returns the template for id, falling back to DefaultStyle.
func LookupStyle(id string) StyleTemplate {
	if s, ok := stylesByID[id]; ok {
		return s
	}
	return stylesByID[DefaultStyle]
}

// Styles lists the catalog in display order.
func Styles() []StyleInfo {
	title := cases.Title(language.Und)
	out := make([]StyleInfo, 0, len(styleTemplates))
	for _, s := range styleTemplates {
		desc := "Custom style"
		if _, after, ok := strings.Cut(s.Prompt, ":"); ok {
			if after = strings.TrimSpace(after); after != "" {
				desc = after
			}
		}
		out = append(out, StyleInfo{ID: s.ID, Name: title.String(s.ID), Description: desc})
	}
	return out
}
