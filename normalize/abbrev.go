package normalize

import "strings"

// abbreviations maps common clinical shorthand to the expanded phrase.
// Keys and values are already in normalized form.
var abbreviations = map[string]string{
	"mi":    "myocardial infarction",
	"dm":    "diabetes mellitus",
	"htn":   "hypertension",
	"chf":   "congestive heart failure",
	"copd":  "chronic obstructive pulmonary disease",
	"cad":   "coronary artery disease",
	"afib":  "atrial fibrillation",
	"ckd":   "chronic kidney disease",
	"uti":   "urinary tract infection",
	"dvt":   "deep vein thrombosis",
	"pe":    "pulmonary embolism",
	"ra":    "rheumatoid arthritis",
	"oa":    "osteoarthritis",
	"ms":    "multiple sclerosis",
	"als":   "amyotrophic lateral sclerosis",
	"tia":   "transient ischemic attack",
	"cva":   "cerebrovascular accident",
	"gerd":  "gastroesophageal reflux disease",
	"ibs":   "irritable bowel syndrome",
	"ards":  "acute respiratory distress syndrome",
	"aki":   "acute kidney injury",
	"esrd":  "end stage renal disease",
	"bph":   "benign prostatic hyperplasia",
	"pci":   "percutaneous coronary intervention",
	"cabg":  "coronary artery bypass graft",
	"tka":   "total knee arthroplasty",
	"tha":   "total hip arthroplasty",
	"acl":   "anterior cruciate ligament",
	"mri":   "magnetic resonance imaging",
	"ct":    "computed tomography",
	"ekg":   "electrocardiogram",
	"ecg":   "electrocardiogram",
	"cbc":   "complete blood count",
	"bmp":   "basic metabolic panel",
	"cmp":   "comprehensive metabolic panel",
	"lfts":  "liver function tests",
	"hba1c": "hemoglobin a1c",
	"bp":    "blood pressure",
	"hr":    "heart rate",
	"rr":    "respiratory rate",
	"o2sat": "oxygen saturation",
}

// ExpandAbbreviations replaces known clinical abbreviations in the text
// with their expanded phrases. The result is a pure function of the input
// and never feeds back into the canonical normalized form used for exact
// matching; it only produces an additional query variant.
func ExpandAbbreviations(text string) string {
	normalized := Normalize(text)

	if expanded, ok := abbreviations[normalized]; ok {
		return expanded
	}

	tokens := Tokenize(normalized)
	expanded := make([]string, len(tokens))
	for i, token := range tokens {
		if phrase, ok := abbreviations[token]; ok {
			expanded[i] = phrase
		} else {
			expanded[i] = token
		}
	}
	return strings.Join(expanded, " ")
}

// Variants returns the deduplicated normalized query variants to try for
// matching: the canonical normalized form first, then the
// abbreviation-expanded form when it differs.
func Variants(text string) []string {
	basic := Normalize(text)
	variants := []string{basic}

	if expanded := ExpandAbbreviations(text); expanded != basic {
		variants = append(variants, expanded)
	}
	return variants
}
