package domain

import "sort"

// topicSynonyms maps classifier topics and common spellings onto catalog keys.
var topicSynonyms = map[string]string{
	"transito":   "tránsito",
	"trafico":    "tránsito",
	"inundacion": "inundación",
	"huracan":    "huracán",
	"volcan":     "volcán",
	"sismo":      "terremoto",
	"derrumbe":   "deslizamiento",
}

var safetyTips = map[string][]string{
	"general": {
		"Ten a mano números de emergencia y un plan familiar de contacto.",
		"Arma un kit: agua, linterna, radio, botiquín, silbato, copia de documentos.",
		"Identifica rutas de evacuación y puntos seguros cercanos.",
		"Mantén el celular cargado y una batería externa.",
	},
	"tránsito": {
		"Usa siempre cinturón (y casco si vas en moto); niños en silla adecuada.",
		"No uses el teléfono al conducir; si debes, detente en un lugar seguro.",
		"Respeta límites de velocidad y distancia con el vehículo de adelante.",
		"Nunca conduzcas bajo efectos de alcohol o drogas.",
		"Revisa frenos, luces, neumáticos y limpiabrisas con regularidad.",
		"En lluvia: baja la velocidad, aumenta distancia y enciende luces.",
		"Si estás cansado, detente y descansa.",
	},
	"terremoto": {
		"Durante el sismo: ¡agáchate, cúbrete y agárrate! al lado de muebles firmes.",
		"Aléjate de ventanas y objetos que puedan caer.",
		"No uses ascensores; evacúa por escaleras cuando termine el movimiento.",
		"Ten lista una mochila de emergencia y un punto de reunión familiar.",
	},
	"inundación": {
		"Mantente informado del nivel de ríos/lluvias y atiende alertas.",
		"Evita cruzar corrientes o puentes anegados; 30 cm de agua pueden arrastrar un auto.",
		"Desconecta electricidad si el agua se acerca a tu casa.",
		"Prepara documentos en bolsa impermeable y una ruta a zonas altas.",
	},
	"huracán": {
		"Asegura techos y objetos sueltos; guarda agua y alimentos no perecederos.",
		"Cierra puertas/ventanas; refuerza con tablones si es necesario.",
		"Ten a mano linternas, radio y baterías; carga tus dispositivos.",
		"Si hay orden de evacuación, síguela de inmediato hacia refugios oficiales.",
	},
	"incendio": {
		"Instala detectores de humo y revisa extintores.",
		"Nunca uses agua en incendios eléctricos o de aceite.",
		"Si hay humo, gatea bajo la capa de humo hacia la salida.",
		"Define dos salidas por habitación y practica el plan de escape.",
	},
	"deslizamiento": {
		"No te detengas ni camines en laderas inestables tras lluvias intensas.",
		"Reporta grietas en el suelo/muros y filtraciones.",
		"Evacúa si escuchas crujidos u observas movimientos de tierra.",
	},
	"volcán": {
		"Usa mascarilla o paño húmedo ante ceniza; protege ojos y vías respiratorias.",
		"Cierra puertas/ventanas; no limpies ceniza en seco, humedécela primero.",
		"Sigue rutas y radios oficiales para zonas de exclusión.",
	},
	"tormenta": {
		"Desconecta equipos sensibles a sobrecargas.",
		"Evita refugiarte bajo árboles aislados; aléjate de objetos metálicos.",
		"Si estás al aire libre, busca un edificio seguro o vehículo cerrado.",
	},
}

// CanonicalTopic applies synonym normalization to a tip topic. Unknown topics
// are returned folded.
func CanonicalTopic(topic string) string {
	t := Normalize(topic)
	if canon, ok := topicSynonyms[t]; ok {
		return canon
	}
	return t
}

// LookupTips returns the canonical topic and a copy of its tips.
// ok is false when the topic is empty or not in the catalog.
func LookupTips(topic string) (canonical string, tips []string, ok bool) {
	canonical = CanonicalTopic(topic)
	list, ok := safetyTips[canonical]
	if !ok {
		return canonical, nil, false
	}
	return canonical, append([]string(nil), list...), true
}

// TipTopics returns the catalog keys, sorted.
func TipTopics() []string {
	topics := make([]string, 0, len(safetyTips))
	for k := range safetyTips {
		topics = append(topics, k)
	}
	sort.Strings(topics)
	return topics
}
