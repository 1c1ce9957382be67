package domain

import "encoding/json"

// Proveedores de perfiles sociales reconocidos por la busqueda de identidad.
const (
	ProviderGitHub   = "github"
	ProviderTwitter  = "twitter"
	ProviderLinkedIn = "linkedin"
)

// EnrichmentQuery son los identificadores que se mandan al servicio de identidad.
type EnrichmentQuery struct {
	Name     string            `json:"name,omitempty"`
	Location string            `json:"location,omitempty"`
	Company  string            `json:"company,omitempty"`
	Profiles map[string]string `json:"profile,omitempty"`
	Email    string            `json:"email,omitempty"`
}

// Empty indica que no hay ningun identificador y el enriquecimiento se omite.
func (q EnrichmentQuery) Empty() bool {
	return q.Name == "" && q.Location == "" && q.Company == "" && len(q.Profiles) == 0 && q.Email == ""
}

// PersonMatch es el registro plano que devuelve el servicio de identidad en un match.
type PersonMatch struct {
	FullName           string            `json:"full_name"`
	JobTitle           string            `json:"job_title"`
	JobCompanyName     string            `json:"job_company_name"`
	JobCompanyIndustry string            `json:"job_company_industry"`
	JobCompanySize     string            `json:"job_company_size"`
	LocationName       LooseString       `json:"location_name"`
	WorkEmail          LooseString       `json:"work_email"`
	Skills             []string          `json:"skills"`
	Education          []MatchEducation  `json:"education"`
	Experience         []MatchExperience `json:"experience"`
	Photo              string            `json:"photo"`
	Profiles           []MatchProfile    `json:"profiles"`
}

type MatchEducation struct {
	School    MatchNamed  `json:"school"`
	Degree    MatchDegree `json:"degree"`
	Degrees   []string    `json:"degrees"`
	Majors    []string    `json:"majors"`
	StartDate LooseString `json:"start_date"`
	EndDate   LooseString `json:"end_date"`
}

type MatchDegree struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

type MatchExperience struct {
	Company   MatchCompany `json:"company"`
	Title     MatchTitle   `json:"title"`
	StartDate LooseString  `json:"start_date"`
	EndDate   LooseString  `json:"end_date"`
}

type MatchNamed struct {
	Name string `json:"name"`
}

type MatchCompany struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
}

// MatchTitle acepta el titulo como string o como objeto {"name": ...}.
type MatchTitle struct {
	Name string `json:"name"`
}

type MatchProfile struct {
	Network string `json:"network"`
	URL     string `json:"url"`
}

// EnrichmentOutcome distingue el camino que tomo el enriquecimiento.
type EnrichmentOutcome string

const (
	EnrichmentMatched EnrichmentOutcome = "matched"
	EnrichmentSkipped EnrichmentOutcome = "skipped"
	EnrichmentFailed  EnrichmentOutcome = "failed"
)

func (t *MatchTitle) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Name = s
		return nil
	}
	type alias MatchTitle
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = MatchTitle(a)
	return nil
}

func (n *MatchNamed) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n.Name = s
		return nil
	}
	type alias MatchNamed
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*n = MatchNamed(a)
	return nil
}

func (d *MatchDegree) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d.Name = s
		return nil
	}
	type alias MatchDegree
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = MatchDegree(a)
	return nil
}
