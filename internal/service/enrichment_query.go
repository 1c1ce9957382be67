package service

import (
	"net/url"
	"strings"

	"reddit-persona/internal/domain"
)

// Politica fija del servidor de identidad: no se deriva de la persona.
const EnrichmentMinLikelihood = 0.6

// EnrichmentRequiredFields son los campos que el match debe poder devolver para contar.
var EnrichmentRequiredFields = []string{"full_name", "job_title", "work_email"}

// providerHosts se evalua en orden; el primer proveedor que matchea gana.
var providerHosts = []struct {
	provider string
	hosts    []string
}{
	{domain.ProviderGitHub, []string{"github.com"}},
	{domain.ProviderTwitter, []string{"twitter.com", "x.com"}},
	{domain.ProviderLinkedIn, []string{"linkedin.com"}},
}

// BuildEnrichmentQuery deriva los identificadores de busqueda de la persona.
func BuildEnrichmentQuery(persona domain.Persona) domain.EnrichmentQuery {
	var q domain.EnrichmentQuery

	q.Name = strings.TrimSpace(domain.Value(persona.Name, ""))
	q.Location = strings.TrimSpace(domain.Value(persona.Location, ""))

	// company_industry solo reemplaza a company cuando no hay nombre de empresa.
	if company := strings.TrimSpace(domain.Value(persona.Company, "")); company != "" {
		q.Company = company
	} else if industry := strings.TrimSpace(domain.Value(persona.CompanyIndustry, "")); industry != "" {
		q.Company = industry
	}

	for _, raw := range persona.SocialProfile {
		provider, ok := ClassifySocialProfile(raw)
		if !ok {
			continue
		}
		if q.Profiles == nil {
			q.Profiles = map[string]string{}
		}
		if _, exists := q.Profiles[provider]; exists {
			continue
		}
		q.Profiles[provider] = raw
	}

	q.Email = strings.TrimSpace(domain.Value(persona.Email, ""))
	return q
}

// ClassifySocialProfile asigna la URL a un proveedor mirando el host parseado:
// host exacto o subdominio, nunca una subcadena del path.
func ClassifySocialProfile(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", false
	}
	for _, p := range providerHosts {
		for _, h := range p.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return p.provider, true
			}
		}
	}
	return "", false
}
