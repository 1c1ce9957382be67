package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Persona es el registro que produce el LLM y que luego completa el enriquecimiento.
// Un puntero nil o un slice nil significa "ausente"; un string o slice vacio cuenta como presente.
type Persona struct {
	Name       *string      `json:"name,omitempty"`
	Age        *LooseString `json:"age,omitempty"`
	Occupation *string      `json:"occupation,omitempty"`
	Status     *string      `json:"status,omitempty"`
	Location   *string      `json:"location,omitempty"`

	PersonalityTraits []EvidenceItem `json:"personality_traits"`
	Motivations       []EvidenceItem `json:"motivations"`
	BehaviourHabits   []EvidenceItem `json:"behaviour_habits"`
	Frustrations      []EvidenceItem `json:"frustrations"`
	GoalsNeeds        []EvidenceItem `json:"goals_needs"`

	SummaryQuote     *string      `json:"summary_quote,omitempty"`
	SubredditsActive []string     `json:"subreddits_active"`
	SentimentTone    *string      `json:"sentiment_tone,omitempty"`
	CommentKarma     *LooseString `json:"comment_karma,omitempty"`
	LinkKarma        *LooseString `json:"link_karma,omitempty"`

	// Campos que normalmente llegan por enriquecimiento.
	Intro           *string          `json:"intro,omitempty"`
	Company         *string          `json:"company,omitempty"`
	CompanyIndustry *string          `json:"company_industry,omitempty"`
	CompanySize     *string          `json:"company_size,omitempty"`
	Email           *string          `json:"email,omitempty"`
	Skills          []string         `json:"skills"`
	Education       []EducationEntry `json:"education"`
	WorkHistory     []WorkEntry      `json:"work_history"`
	ProfilePicture  *string          `json:"profile_picture,omitempty"`
	SocialProfile   []string         `json:"social_profile"`
	Keywords        []string         `json:"keywords"`
}

// MaxCitations limita las citas textuales por item.
const MaxCitations = 3

// EvidenceItem es un rasgo/motivacion/habito con sus citas de respaldo.
type EvidenceItem struct {
	Label     string   `json:"label"`
	Citations []string `json:"citations"`
	Degree    *int     `json:"degree,omitempty"`
}

// labelKeys son las claves que el LLM usa segun la lista (trait, motivation, ...).
var labelKeys = []string{"label", "trait", "motivation", "habit", "frustration", "goal_need", "goal", "need"}

func (e *EvidenceItem) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	// Algunos modelos devuelven la lista como strings sueltos.
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*e = EvidenceItem{Label: strings.TrimSpace(plain), Citations: []string{}}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var item EvidenceItem
	for _, key := range labelKeys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var s LooseString
		if err := json.Unmarshal(v, &s); err == nil && strings.TrimSpace(string(s)) != "" {
			item.Label = strings.TrimSpace(string(s))
			break
		}
	}

	item.Citations = []string{}
	if v, ok := raw["citations"]; ok {
		var cites []string
		var single string
		if err := json.Unmarshal(v, &single); err == nil {
			cites = []string{single}
		} else if err := json.Unmarshal(v, &cites); err != nil {
			cites = nil
		}
		for _, c := range cites {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			item.Citations = append(item.Citations, c)
			if len(item.Citations) == MaxCitations {
				break
			}
		}
	}

	if v, ok := raw["degree"]; ok {
		var d float64
		if err := json.Unmarshal(v, &d); err == nil {
			deg := int(d)
			item.Degree = &deg
		}
	}

	*e = item
	return nil
}

// EducationEntry es una entrada de formacion ya normalizada.
type EducationEntry struct {
	School    string `json:"school"`
	Degree    string `json:"degree"`
	Field     string `json:"field"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// WorkEntry es una entrada de experiencia laboral ya normalizada.
type WorkEntry struct {
	Company   string `json:"company"`
	Title     string `json:"title"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Industry  string `json:"industry"`
}

// LooseString acepta cualquier escalar JSON (el LLM a veces manda numeros donde esperamos texto).
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = LooseString(v)
	case 't', 'f':
		*s = ""
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*s = LooseString(buf.String())
	}
	return nil
}

func (s LooseString) String() string {
	return string(s)
}

// StringPtr ayuda a construir campos opcionales.
func StringPtr(s string) *string {
	return &s
}

// LoosePtr ayuda a construir campos opcionales escalares.
func LoosePtr(s string) *LooseString {
	v := LooseString(s)
	return &v
}

// Value devuelve el valor de un campo opcional o el fallback si esta ausente.
func Value(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

// Clone devuelve una copia profunda; el merge nunca muta la persona de entrada.
func (p Persona) Clone() Persona {
	out := p
	out.Name = cloneString(p.Name)
	out.Age = cloneLoose(p.Age)
	out.Occupation = cloneString(p.Occupation)
	out.Status = cloneString(p.Status)
	out.Location = cloneString(p.Location)
	out.PersonalityTraits = cloneEvidence(p.PersonalityTraits)
	out.Motivations = cloneEvidence(p.Motivations)
	out.BehaviourHabits = cloneEvidence(p.BehaviourHabits)
	out.Frustrations = cloneEvidence(p.Frustrations)
	out.GoalsNeeds = cloneEvidence(p.GoalsNeeds)
	out.SummaryQuote = cloneString(p.SummaryQuote)
	out.SubredditsActive = cloneStrings(p.SubredditsActive)
	out.SentimentTone = cloneString(p.SentimentTone)
	out.CommentKarma = cloneLoose(p.CommentKarma)
	out.LinkKarma = cloneLoose(p.LinkKarma)
	out.Intro = cloneString(p.Intro)
	out.Company = cloneString(p.Company)
	out.CompanyIndustry = cloneString(p.CompanyIndustry)
	out.CompanySize = cloneString(p.CompanySize)
	out.Email = cloneString(p.Email)
	out.Skills = cloneStrings(p.Skills)
	if p.Education != nil {
		out.Education = append([]EducationEntry{}, p.Education...)
	}
	if p.WorkHistory != nil {
		out.WorkHistory = append([]WorkEntry{}, p.WorkHistory...)
	}
	out.ProfilePicture = cloneString(p.ProfilePicture)
	out.SocialProfile = cloneStrings(p.SocialProfile)
	out.Keywords = cloneStrings(p.Keywords)
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneLoose(p *LooseString) *LooseString {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func cloneEvidence(in []EvidenceItem) []EvidenceItem {
	if in == nil {
		return nil
	}
	out := make([]EvidenceItem, len(in))
	for i, item := range in {
		out[i] = EvidenceItem{Label: item.Label, Citations: cloneStrings(item.Citations)}
		if item.Degree != nil {
			d := *item.Degree
			out[i].Degree = &d
		}
	}
	return out
}
