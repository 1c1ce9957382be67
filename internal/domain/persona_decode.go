package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
)

// nameKeys son las claves que identifican a un objeto dentro de una lista de strings
// (por ejemplo [{"name":"golang","count":3}]).
var nameKeys = []string{"name", "subreddit", "label", "title", "value"}

// DecodePersona decodifica un objeto persona tolerando tipos inesperados.
// Solo falla si el documento no es un objeto JSON valido; los campos que no se
// pueden convertir quedan ausentes y se devuelven ordenados en dropped.
func DecodePersona(data []byte) (Persona, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Persona{}, nil, err
	}
	if raw == nil {
		return Persona{}, nil, errors.New("persona must be a JSON object")
	}

	var p Persona
	text := map[string]**string{
		"name":             &p.Name,
		"occupation":       &p.Occupation,
		"status":           &p.Status,
		"location":         &p.Location,
		"summary_quote":    &p.SummaryQuote,
		"sentiment_tone":   &p.SentimentTone,
		"intro":            &p.Intro,
		"company":          &p.Company,
		"company_industry": &p.CompanyIndustry,
		"company_size":     &p.CompanySize,
		"email":            &p.Email,
		"profile_picture":  &p.ProfilePicture,
	}
	loose := map[string]**LooseString{
		"age":           &p.Age,
		"comment_karma": &p.CommentKarma,
		"link_karma":    &p.LinkKarma,
	}
	evidence := map[string]*[]EvidenceItem{
		"personality_traits": &p.PersonalityTraits,
		"motivations":        &p.Motivations,
		"behaviour_habits":   &p.BehaviourHabits,
		"frustrations":       &p.Frustrations,
		"goals_needs":        &p.GoalsNeeds,
	}
	lists := map[string]*[]string{
		"subreddits_active": &p.SubredditsActive,
		"skills":            &p.Skills,
		"social_profile":    &p.SocialProfile,
		"keywords":          &p.Keywords,
	}

	var dropped []string
	for key, v := range raw {
		v = bytes.TrimSpace(v)
		if len(v) == 0 || bytes.Equal(v, []byte("null")) {
			continue
		}
		ok := true
		switch {
		case text[key] != nil:
			var s string
			if s, ok = flattenText(v); ok {
				*text[key] = &s
			}
		case loose[key] != nil:
			var s string
			if s, ok = flattenText(v); ok {
				ls := LooseString(s)
				*loose[key] = &ls
			}
		case evidence[key] != nil:
			var items []EvidenceItem
			if items, ok = decodeEvidenceList(v); ok {
				*evidence[key] = items
			}
		case lists[key] != nil:
			var items []string
			if items, ok = decodeStringList(v); ok {
				*lists[key] = items
			}
		case key == "education":
			var entries []EducationEntry
			if ok = json.Unmarshal(v, &entries) == nil; ok {
				p.Education = entries
			}
		case key == "work_history":
			var entries []WorkEntry
			if ok = json.Unmarshal(v, &entries) == nil; ok {
				p.WorkHistory = entries
			}
		}
		if !ok {
			dropped = append(dropped, key)
		}
	}
	sort.Strings(dropped)
	return p, dropped, nil
}

func (p *Persona) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	out, _, err := DecodePersona(data)
	if err != nil {
		return err
	}
	*p = out
	return nil
}

// flattenText convierte un valor JSON a texto: strings tal cual, numeros con su
// literal, y arrays u objetos como sus valores unidos por ", ". Los booleanos no
// tienen una lectura textual razonable y se rechazan.
func flattenText(v json.RawMessage) (string, bool) {
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", false
		}
		return s, true
	case 't', 'f':
		return "", false
	case '[', '{':
		var parts []string
		dec := json.NewDecoder(bytes.NewReader(v))
		dec.UseNumber()
		if err := collectText(dec, &parts); err != nil || len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, ", "), true
	default:
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return "", false
		}
		return n.String(), true
	}
}

// collectText recorre un valor con el tokenizer para respetar el orden del documento.
func collectText(dec *json.Decoder, out *[]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch t := tok.(type) {
	case json.Delim:
		for dec.More() {
			if t == '{' {
				if _, err := dec.Token(); err != nil {
					return err
				}
			}
			if err := collectText(dec, out); err != nil {
				return err
			}
		}
		_, err := dec.Token()
		return err
	case string:
		if s := strings.TrimSpace(t); s != "" {
			*out = append(*out, s)
		}
	case json.Number:
		*out = append(*out, t.String())
	}
	return nil
}

// decodeStringList acepta un array, un string separado por comas o un objeto
// (se toman sus claves). Los elementos objeto aportan su nombre.
func decodeStringList(v json.RawMessage) ([]string, bool) {
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, false
		}
		out := []string{}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, true
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(v, &elems); err != nil {
			return nil, false
		}
		out := []string{}
		for _, elem := range elems {
			elem = bytes.TrimSpace(elem)
			if len(elem) == 0 || bytes.Equal(elem, []byte("null")) {
				continue
			}
			if s, ok := listElement(elem); ok && s != "" {
				out = append(out, s)
			}
		}
		return out, true
	case '{':
		keys, err := objectKeys(v)
		if err != nil {
			return nil, false
		}
		return keys, true
	default:
		return nil, false
	}
}

func listElement(elem json.RawMessage) (string, bool) {
	if elem[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(elem, &obj); err != nil {
			return "", false
		}
		for _, key := range nameKeys {
			if nv, ok := obj[key]; ok && len(bytes.TrimSpace(nv)) > 0 && !bytes.Equal(bytes.TrimSpace(nv), []byte("null")) {
				if s, ok := flattenText(bytes.TrimSpace(nv)); ok {
					return strings.TrimSpace(s), true
				}
			}
		}
	}
	s, ok := flattenText(elem)
	return strings.TrimSpace(s), ok
}

func objectKeys(v json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(v))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	keys := []string{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if k, ok := tok.(string); ok {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return keys, nil
}

// decodeEvidenceList acepta un array o un unico item. Los elementos nulos, los que
// no decodifican y los que quedan sin label se descartan.
func decodeEvidenceList(v json.RawMessage) ([]EvidenceItem, bool) {
	var elems []json.RawMessage
	switch v[0] {
	case '[':
		if err := json.Unmarshal(v, &elems); err != nil {
			return nil, false
		}
	case '{', '"':
		elems = []json.RawMessage{v}
	default:
		return nil, false
	}

	out := []EvidenceItem{}
	for _, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || bytes.Equal(elem, []byte("null")) {
			continue
		}
		var item EvidenceItem
		if err := json.Unmarshal(elem, &item); err != nil || item.Label == "" {
			continue
		}
		out = append(out, item)
	}
	return out, true
}
