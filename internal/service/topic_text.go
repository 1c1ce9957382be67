package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bbalet/stopwords"
)

// MaxTopicLabelWords es el largo maximo del nombre de un tema.
const MaxTopicLabelWords = 3

var (
	topicURLRe   = regexp.MustCompile(`https?\S+`)
	topicWordRe  = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	topicPunctRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// PreprocessTopicText baja a minusculas, quita URLs, palabras de 1-2 letras y stop-words en ingles.
func PreprocessTopicText(text string) string {
	text = strings.ToLower(text)
	text = topicURLRe.ReplaceAllString(text, " ")

	words := topicWordRe.FindAllString(text, -1)
	out := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) > 2 {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(strings.Fields(stopwords.CleanString(strings.Join(out, " "), "en", false)), " ")
}

// TrimTopicLabel quita la puntuacion y se queda con las primeras maxWords palabras.
func TrimTopicLabel(label string, maxWords int) string {
	label = topicPunctRe.ReplaceAllString(label, "")
	words := strings.Fields(label)
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}
