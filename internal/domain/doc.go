// Package domain holds the pure core of the assistant: text folding, intent
// classification, gazetteer correction, severity mapping, and the types that
// cross collaborator boundaries.
//
// # Text folding
//
// Every matcher works on folded text: lowercased, diacritics removed
// (decompose, drop combining marks, recompose), surrounding whitespace
// trimmed. [Fold] also keeps a byte-offset map back into the original so
// extracted slots keep their accents: "ir a León" classifies on "ir a leon"
// but yields the place "león".
//
// # Intent rules
//
// Classification is a decision list evaluated top to bottom, first match wins:
//
//	articles           articul|noticia|informacion|que es|definicion
//	                   query after "sobre"/"de", else the whole utterance
//	incidents          incidencia|insidencia|accidente|evento|alerta
//	                   place after "en", severity via [MatchSeverity]
//	navigate           (ir|ve|vamos) a, buscar, donde queda, ubicacion de + place
//	tips               topical keyword sets (transito, terremoto, ...)
//	navigate_fallback  anything after "en"
//
// Categories overlap ("accidente" is both an incident trigger and a traffic
// tip keyword), so the order is part of the behavior and is covered by tests.
//
// # Severity
//
// Colors are canonical: red, yellow, green, blue, purple. The logical
// vocabulary (grave, medio, leve, transito_menor, muy_grande) maps onto them.
// Anything else normalizes to yellow, indistinguishable from an explicit
// yellow.
//
// # Gazetteer
//
// Place fragments are cleaned and compared against a fixed list with
// Jaro similarity on folded text, scaled to 0–100. Scores at or above
// [GazetteerCutoff] replace the fragment with the canonical spelling; earlier
// entries win ties.
package domain
