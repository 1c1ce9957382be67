package domain

// OutlierTopicID es el cluster reservado para documentos que no encajan en ningun tema.
const OutlierTopicID = -1

// Topic describe un cluster de la actividad con su nombre legible.
type Topic struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Count    int       `json:"count"`
	Keywords []string  `json:"keywords"`
	Centroid []float32 `json:"-"`
}

// TopicAssignment asocia un documento limpio a su tema.
type TopicAssignment struct {
	Document string `json:"document"`
	TopicID  int    `json:"topic_id"`
}

// TopicSummary es el resultado del etiquetado de temas.
type TopicSummary struct {
	Topics      []Topic           `json:"topics"`
	Assignments []TopicAssignment `json:"assignments"`
}

// Names devuelve el mapa topic_id -> nombre.
func (s TopicSummary) Names() map[int]string {
	out := make(map[int]string, len(s.Topics))
	for _, t := range s.Topics {
		out[t.ID] = t.Name
	}
	return out
}

// Empty indica que no hubo documentos utilizables.
func (s TopicSummary) Empty() bool {
	return len(s.Assignments) == 0
}

// RelatedTopic es un tema guardado de otra cuenta cercano a un tema del reporte.
type RelatedTopic struct {
	Handle   string   `json:"handle"`
	ReportID string   `json:"report_id"`
	TopicID  int      `json:"topic_id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Distance float64  `json:"distance"`
}
