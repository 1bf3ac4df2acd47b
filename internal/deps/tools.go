package deps

import "slidemovie/internal/config"

// BuildRequirements lists the binaries a video build invokes.
func BuildRequirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: cfg.Tools.FFmpeg, Description: "Silence padding, clip encoding, and concatenation"},
		{Name: "FFprobe", Command: cfg.Tools.FFprobe, Description: "Narration and clip duration probing"},
		{Name: "LibreOffice", Command: cfg.Tools.Soffice, Description: "Slide deck to PDF conversion"},
		{Name: "pdftoppm", Command: cfg.Tools.Pdftoppm, Description: "PDF page rasterization"},
	}
}

// DraftRequirements lists the binaries drafting a deck from Markdown invokes.
func DraftRequirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "Pandoc", Command: cfg.Tools.Pandoc, Description: "Markdown to slide deck conversion"},
	}
}
