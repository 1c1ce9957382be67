package service

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"sort"
	"strings"

	"github.com/muesli/clusters"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultTopicMinClusterSize = 5
	DefaultTopicMaxFeatures    = 3000
	// TopicEmbeddingDim es la dimension fija de los centroides persistidos.
	TopicEmbeddingDim = 256

	defaultTopicKeywords = 10
	defaultTopicMaxIter  = 50
)

var ErrNoTopicDocuments = errors.New("topic model: no documents")

// TopicCluster es la salida cruda del modelo para un cluster, sin nombre.
type TopicCluster struct {
	ID       int
	Count    int
	Keywords []string
	Centroid []float32
}

// TopicFit asigna cada documento de entrada (mismo orden) a un cluster.
// Clusters lista primero el outlier si tiene documentos y luego 0..n por tamanio.
type TopicFit struct {
	Assignments []int
	Clusters    []TopicCluster
}

// TopicModel agrupa documentos ya preprocesados.
type TopicModel interface {
	Fit(ctx context.Context, docs []string) (TopicFit, error)
}

// KeywordTopicModel: bolsa de palabras (unigramas y bigramas), k-means esferico
// sobre muesli/clusters y palabras clave por c-TF-IDF. Determinista para la misma entrada.
type KeywordTopicModel struct {
	MinClusterSize int
	MaxFeatures    int
	MaxKeywords    int
	MaxIter        int
}

func NewKeywordTopicModel(minClusterSize, maxFeatures int) *KeywordTopicModel {
	if minClusterSize <= 0 {
		minClusterSize = DefaultTopicMinClusterSize
	}
	if maxFeatures <= 0 {
		maxFeatures = DefaultTopicMaxFeatures
	}
	return &KeywordTopicModel{
		MinClusterSize: minClusterSize,
		MaxFeatures:    maxFeatures,
		MaxKeywords:    defaultTopicKeywords,
		MaxIter:        defaultTopicMaxIter,
	}
}

func (m *KeywordTopicModel) Fit(ctx context.Context, docs []string) (TopicFit, error) {
	if len(docs) == 0 {
		return TopicFit{}, ErrNoTopicDocuments
	}

	terms := make([][]string, len(docs))
	for i, d := range docs {
		terms[i] = docTerms(d)
	}
	vocab, index := buildVocabulary(terms, m.MaxFeatures)

	counts := make([][]float64, len(docs))
	// obs guarda los vectores L2-normalizados de los documentos con terminos; owner apunta al documento.
	obs := make(clusters.Observations, 0, len(docs))
	owner := make([]int, 0, len(docs))
	for i, ts := range terms {
		vec := make([]float64, len(vocab))
		for _, t := range ts {
			if j, ok := index[t]; ok {
				vec[j]++
			}
		}
		counts[i] = vec
		if n := floats.Norm(vec, 2); n > 0 {
			u := make([]float64, len(vec))
			floats.ScaleTo(u, 1/n, vec)
			obs = append(obs, clusters.Coordinates(u))
			owner = append(owner, i)
		}
	}

	assign := make([]int, len(docs))
	for i := range assign {
		assign[i] = -1
	}

	if k := m.clusterCount(len(obs)); k > 0 {
		cc := farthestPointInit(obs, k)
		for iter := 0; iter < m.MaxIter; iter++ {
			if err := ctx.Err(); err != nil {
				return TopicFit{}, err
			}
			cc.Reset()
			changed := false
			for p, o := range obs {
				c := cc.Nearest(o)
				cc[c].Append(o)
				if assign[owner[p]] != c {
					assign[owner[p]] = c
					changed = true
				}
			}
			if !changed {
				break
			}
			// un centro vacio conserva su posicion anterior
			cc.Recenter()
			for i := range cc {
				if n := floats.Norm(cc[i].Center, 2); n > 0 {
					floats.Scale(1/n, cc[i].Center)
				}
			}
		}
	}

	final := m.relabel(assign)
	return TopicFit{
		Assignments: final,
		Clusters:    m.describe(vocab, counts, final),
	}, nil
}

// clusterCount elige k ~ sqrt(n/2) sin pasar de n/MinClusterSize.
func (m *KeywordTopicModel) clusterCount(usable int) int {
	if usable < m.MinClusterSize {
		return 0
	}
	k := int(math.Sqrt(float64(usable) / 2))
	if k < 1 {
		k = 1
	}
	if limit := usable / m.MinClusterSize; k > limit {
		k = limit
	}
	return k
}

// relabel manda al outlier los clusters chicos y renumera el resto por tamanio descendente.
func (m *KeywordTopicModel) relabel(assign []int) []int {
	sizes := map[int]int{}
	for _, a := range assign {
		if a >= 0 {
			sizes[a]++
		}
	}
	kept := make([]int, 0, len(sizes))
	for c, n := range sizes {
		if n >= m.MinClusterSize {
			kept = append(kept, c)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if sizes[kept[i]] != sizes[kept[j]] {
			return sizes[kept[i]] > sizes[kept[j]]
		}
		return kept[i] < kept[j]
	})
	remap := make(map[int]int, len(kept))
	for newID, c := range kept {
		remap[c] = newID
	}

	out := make([]int, len(assign))
	for i, a := range assign {
		if id, ok := remap[a]; ok {
			out[i] = id
		} else {
			out[i] = -1
		}
	}
	return out
}

// describe calcula c-TF-IDF por cluster: tf normalizado por clase * log(1 + A/f_t).
func (m *KeywordTopicModel) describe(vocab []string, counts [][]float64, assign []int) []TopicCluster {
	classTF := map[int][]float64{}
	classDocs := map[int]int{}
	for i, a := range assign {
		tf, ok := classTF[a]
		if !ok {
			tf = make([]float64, len(vocab))
			classTF[a] = tf
		}
		floats.Add(tf, counts[i])
		classDocs[a]++
	}

	termFreq := make([]float64, len(vocab))
	for _, tf := range classTF {
		floats.Add(termFreq, tf)
	}
	avgWords := floats.Sum(termFreq) / float64(len(classTF))

	ids := make([]int, 0, len(classTF))
	for id := range classTF {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	clusters := make([]TopicCluster, 0, len(ids))
	for _, id := range ids {
		tf := classTF[id]
		classTotal := floats.Sum(tf)
		scores := make([]float64, len(vocab))
		if classTotal > 0 {
			for j, v := range tf {
				if v == 0 || termFreq[j] == 0 {
					continue
				}
				scores[j] = (v / classTotal) * math.Log(1+avgWords/termFreq[j])
			}
		}
		clusters = append(clusters, TopicCluster{
			ID:       id,
			Count:    classDocs[id],
			Keywords: topKeywords(vocab, scores, m.MaxKeywords),
			Centroid: hashedEmbedding(vocab, scores),
		})
	}
	return clusters
}

func docTerms(doc string) []string {
	tokens := strings.Fields(doc)
	out := make([]string, 0, 2*len(tokens))
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// buildVocabulary se queda con los maxFeatures terminos mas frecuentes del corpus.
func buildVocabulary(terms [][]string, maxFeatures int) ([]string, map[string]int) {
	freq := map[string]int{}
	for _, ts := range terms {
		for _, t := range ts {
			freq[t]++
		}
	}
	vocab := make([]string, 0, len(freq))
	for t := range freq {
		vocab = append(vocab, t)
	}
	sort.Slice(vocab, func(i, j int) bool {
		if freq[vocab[i]] != freq[vocab[j]] {
			return freq[vocab[i]] > freq[vocab[j]]
		}
		return vocab[i] < vocab[j]
	})
	if maxFeatures > 0 && len(vocab) > maxFeatures {
		vocab = vocab[:maxFeatures]
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	for i, t := range vocab {
		index[t] = i
	}
	return vocab, index
}

// farthestPointInit arranca del primer documento y agrega el mas lejano a los centros ya elegidos.
// Sobre vectores unitarios la distancia euclidea ordena igual que el coseno.
func farthestPointInit(obs clusters.Observations, k int) clusters.Clusters {
	cc := clusters.Clusters{{Center: copyCoordinates(obs[0].Coordinates())}}
	for len(cc) < k {
		best, bestDist := -1, 0.0
		for i, o := range obs {
			nearest := math.Inf(1)
			for _, c := range cc {
				if d := o.Distance(c.Center); d < nearest {
					nearest = d
				}
			}
			if nearest > bestDist {
				best, bestDist = i, nearest
			}
		}
		if best < 0 || bestDist <= 1e-9 {
			break
		}
		cc = append(cc, clusters.Cluster{Center: copyCoordinates(obs[best].Coordinates())})
	}
	return cc
}

func copyCoordinates(c clusters.Coordinates) clusters.Coordinates {
	return append(clusters.Coordinates(nil), c...)
}

func topKeywords(vocab []string, scores []float64, limit int) []string {
	idx := make([]int, 0, len(scores))
	for j, s := range scores {
		if s > 0 {
			idx = append(idx, j)
		}
	}
	sort.Slice(idx, func(a, b int) bool {
		if scores[idx[a]] != scores[idx[b]] {
			return scores[idx[a]] > scores[idx[b]]
		}
		return vocab[idx[a]] < vocab[idx[b]]
	})
	if limit > 0 && len(idx) > limit {
		idx = idx[:limit]
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = vocab[j]
	}
	return out
}

// hashedEmbedding proyecta los pesos c-TF-IDF a un espacio fijo para poder comparar temas entre cuentas.
func hashedEmbedding(vocab []string, scores []float64) []float32 {
	vec := make([]float64, TopicEmbeddingDim)
	for j, s := range scores {
		if s == 0 {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(vocab[j]))
		sum := h.Sum32()
		sign := 1.0
		if sum&(1<<31) != 0 {
			sign = -1
		}
		vec[int(sum%TopicEmbeddingDim)] += sign * s
	}
	out := make([]float32, TopicEmbeddingDim)
	n := floats.Norm(vec, 2)
	if n == 0 {
		return out
	}
	for i, v := range vec {
		out[i] = float32(v / n)
	}
	return out
}
