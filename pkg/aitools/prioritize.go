package aitools

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Relevance weights. A hint term naming a resource the tool works on
// outweighs any number of incidental verb matches.
const (
	weightNameTerm        = 3
	weightDescriptionTerm = 1
	bonusNameResource     = 8
	bonusDescResource     = 4
)

// resourceSynonyms groups the Spanish and English words users employ for
// each business resource. Keys are canonical resource names.
var resourceSynonyms = map[string][]string{
	"property":    {"property", "propiedad", "inmueble", "casa", "departamento", "apartment", "apartamento", "unit", "unidad", "listing", "building", "edificio"},
	"tenant":      {"tenant", "inquilino", "arrendatario", "renter", "occupant", "ocupante"},
	"lease":       {"lease", "contrato", "contract", "arrendamiento", "alquiler", "rental"},
	"payment":     {"payment", "pago", "abono", "cobro", "deposito", "deposit"},
	"invoice":     {"invoice", "factura", "bill", "recibo", "receipt"},
	"user":        {"user", "usuario", "account", "cuenta"},
	"owner":       {"owner", "propietario", "dueno", "landlord", "arrendador"},
	"maintenance": {"maintenance", "mantenimiento", "repair", "reparacion", "ticket"},
	"document":    {"document", "documento", "file", "archivo"},
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "all": {}, "any": {}, "please": {},
	"los": {}, "las": {}, "del": {}, "con": {}, "que": {}, "una": {}, "uno": {}, "por": {},
	"para": {}, "mis": {}, "sus": {}, "todos": {}, "todas": {}, "este": {}, "esta": {},
}

var canonicalResource = func() map[string]string {
	out := make(map[string]string)
	for resource, words := range resourceSynonyms {
		for _, word := range words {
			out[word] = resource
		}
	}
	return out
}()

// fold lowercases s and strips diacritics ("Muéstrame" -> "muestrame").
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

type term struct {
	word     string
	resource bool
}

// terms splits text into normalized, de-duplicated terms. Resource words
// collapse to their canonical resource; other words lose a plural "s".
func terms(text string) []term {
	fields := strings.FieldsFunc(fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	out := make([]term, 0, len(fields))
	for _, field := range fields {
		if len(field) < 3 {
			continue
		}
		if _, stop := stopWords[field]; stop {
			continue
		}
		t := normalizeTerm(field)
		if seen[t.word] {
			continue
		}
		seen[t.word] = true
		out = append(out, t)
	}
	return out
}

func normalizeTerm(word string) term {
	for _, candidate := range singularForms(word) {
		if resource, ok := canonicalResource[candidate]; ok {
			return term{word: resource, resource: true}
		}
	}
	if len(word) > 3 && strings.HasSuffix(word, "s") {
		word = strings.TrimSuffix(word, "s")
	}
	return term{word: word}
}

// singularForms lists the word itself and the singulars it may stand for in
// Spanish or English.
func singularForms(word string) []string {
	forms := []string{word}
	if strings.HasSuffix(word, "ies") && len(word) > 4 {
		forms = append(forms, strings.TrimSuffix(word, "ies")+"y")
	}
	if strings.HasSuffix(word, "es") && len(word) > 4 {
		forms = append(forms, strings.TrimSuffix(word, "es"))
	}
	if strings.HasSuffix(word, "s") && len(word) > 3 {
		forms = append(forms, strings.TrimSuffix(word, "s"))
	}
	return forms
}

// relevance scores def against the hint terms.
func relevance(def *Definition, hint []term) int {
	nameTerms := termSet(terms(def.Name))
	descTerms := termSet(terms(def.Description))

	score := 0
	for _, t := range hint {
		if nameTerms[t.word] {
			score += weightNameTerm
			if t.resource {
				score += bonusNameResource
			}
		}
		if descTerms[t.word] {
			score += weightDescriptionTerm
			if t.resource {
				score += bonusDescResource
			}
		}
	}
	return score
}

func termSet(ts []term) map[string]bool {
	set := make(map[string]bool, len(ts))
	for _, t := range ts {
		set[t.word] = true
	}
	return set
}

// prioritize orders defs by relevance to hint, most relevant first. Ties,
// and every tool when the hint carries no usable terms, keep catalog order.
func prioritize(defs []*Definition, hint string) []*Definition {
	hintTerms := terms(hint)
	if len(hintTerms) == 0 {
		return defs
	}

	type scored struct {
		def   *Definition
		score int
	}
	ranked := make([]scored, len(defs))
	for i, def := range defs {
		ranked[i] = scored{def: def, score: relevance(def, hintTerms)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]*Definition, len(ranked))
	for i, r := range ranked {
		out[i] = r.def
	}
	return out
}
