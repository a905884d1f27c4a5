package translation

import "agstrans/internal/parser"

// Presentation holds the fonts and text direction a pack may override.
// It implements parser.Display.
type Presentation struct {
	NormalFont int
	SpeechFont int
	Direction  parser.Direction
}

func (p *Presentation) SetNormalFont(index int) { p.NormalFont = index }

func (p *Presentation) SetSpeechFont(index int) { p.SpeechFont = index }

func (p *Presentation) SetTextDirection(dir parser.Direction) { p.Direction = dir }
