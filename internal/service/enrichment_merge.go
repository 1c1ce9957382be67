package service

import (
	"strings"

	"reddit-persona/internal/domain"
)

// MaxEnrichmentKeywords acota las keywords derivadas de skills.
const MaxEnrichmentKeywords = 10

// ApplyMatch completa huecos de la persona con el match externo y devuelve una copia.
// Solo escribe campos ausentes (nil); un string o lista vacia cuenta como presente.
// social_profile es la unica excepcion: se agregan URLs nuevas sin duplicar.
func ApplyMatch(persona domain.Persona, match domain.PersonMatch) domain.Persona {
	out := persona.Clone()

	fillString(&out.Name, match.FullName)

	if out.Intro == nil && match.JobTitle != "" {
		intro := match.JobTitle
		if match.JobCompanyName != "" {
			intro = match.JobTitle + " at " + match.JobCompanyName
		}
		out.Intro = &intro
	}

	fillString(&out.Location, match.LocationName.String())
	fillString(&out.CompanyIndustry, match.JobCompanyIndustry)
	fillString(&out.CompanySize, match.JobCompanySize)
	fillString(&out.Company, match.JobCompanyName)
	fillString(&out.Email, match.WorkEmail.String())

	if out.Skills == nil && len(match.Skills) > 0 {
		out.Skills = append([]string{}, match.Skills...)
	}

	if out.Education == nil && len(match.Education) > 0 {
		out.Education = make([]domain.EducationEntry, 0, len(match.Education))
		for _, e := range match.Education {
			out.Education = append(out.Education, mapEducation(e))
		}
	}

	if out.WorkHistory == nil && len(match.Experience) > 0 {
		out.WorkHistory = make([]domain.WorkEntry, 0, len(match.Experience))
		for _, e := range match.Experience {
			out.WorkHistory = append(out.WorkHistory, domain.WorkEntry{
				Company:   e.Company.Name,
				Title:     e.Title.Name,
				StartDate: e.StartDate.String(),
				EndDate:   e.EndDate.String(),
				Industry:  e.Company.Industry,
			})
		}
	}

	fillString(&out.ProfilePicture, match.Photo)

	seen := make(map[string]struct{}, len(out.SocialProfile))
	for _, u := range out.SocialProfile {
		seen[u] = struct{}{}
	}
	for _, p := range match.Profiles {
		u := strings.TrimSpace(p.URL)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out.SocialProfile = append(out.SocialProfile, u)
	}

	if out.Keywords == nil && len(match.Skills) > 0 {
		n := len(match.Skills)
		if n > MaxEnrichmentKeywords {
			n = MaxEnrichmentKeywords
		}
		out.Keywords = append([]string{}, match.Skills[:n]...)
	}

	return out
}

func fillString(dst **string, value string) {
	if *dst != nil || value == "" {
		return
	}
	v := value
	*dst = &v
}

func mapEducation(e domain.MatchEducation) domain.EducationEntry {
	degree := e.Degree.Name
	if degree == "" && len(e.Degrees) > 0 {
		degree = e.Degrees[0]
	}
	field := ""
	switch {
	case len(e.Degree.Fields) > 0:
		field = e.Degree.Fields[0]
	case len(e.Majors) > 0:
		field = e.Majors[0]
	}
	return domain.EducationEntry{
		School:    e.School.Name,
		Degree:    degree,
		Field:     field,
		StartDate: e.StartDate.String(),
		EndDate:   e.EndDate.String(),
	}
}
